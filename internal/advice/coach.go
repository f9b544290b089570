package advice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yourname/studyhabits/internal"
)

const systemPrompt = "You are a helpful study coach."

// Advisor produces narrative advice for a finished analysis. Failures
// are expected and never fatal; callers substitute a placeholder.
type Advisor interface {
	Advise(ctx context.Context, input internal.SessionInput, rule internal.RuleResult, ml internal.MLResult) (string, error)
}

// StudyCoach prompts a text generator with the structured analysis.
// Every call is bounded by the configured timeout so a slow model can
// never stall the request.
type StudyCoach struct {
	gen     TextGenerator
	timeout time.Duration
}

func NewStudyCoach(gen TextGenerator, timeout time.Duration) *StudyCoach {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &StudyCoach{gen: gen, timeout: timeout}
}

func (c *StudyCoach) Advise(ctx context.Context, input internal.SessionInput, rule internal.RuleResult, ml internal.MLResult) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.gen.GenerateText(ctx, systemPrompt, buildPrompt(input, rule, ml))
}

func buildPrompt(input internal.SessionInput, rule internal.RuleResult, ml internal.MLResult) string {
	risk := 0.0
	if ml.RiskScore != nil {
		risk = *ml.RiskScore
	}

	var b strings.Builder
	b.WriteString("Student Data:\n")
	fmt.Fprintf(&b, "- Study Hours: %s\n", floatOrNone(input.StudyHours))
	fmt.Fprintf(&b, "- Sleep Hours: %s\n", floatOrNone(input.SleepHours))
	fmt.Fprintf(&b, "- Break Frequency: %s min\n", intOrNone(input.BreakFrequency))
	fmt.Fprintf(&b, "- Concentration: %s/5\n\n", intOrNone(input.ConcentrationLevel))
	b.WriteString("Rule-based Output:\n")
	fmt.Fprintf(&b, "- Warnings: %s\n", strings.Join(rule.Warnings, "; "))
	fmt.Fprintf(&b, "- Recommendations: %s\n\n", strings.Join(rule.Recommendations, "; "))
	fmt.Fprintf(&b, "ML Predicted Burnout Risk: %.1f%%\n\n", risk)
	b.WriteString("Give brief, motivational, and actionable advice (2-3 sentences) to help improve their study habits.")
	return b.String()
}

func floatOrNone(v *float64) string {
	if v == nil {
		return "not reported"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func intOrNone(v *int) string {
	if v == nil {
		return "not reported"
	}
	return strconv.Itoa(*v)
}

// Disabled is the advisor used when no generator is configured.
type Disabled struct{}

func (Disabled) Advise(ctx context.Context, input internal.SessionInput, rule internal.RuleResult, ml internal.MLResult) (string, error) {
	return "", errors.New("no advice generator configured")
}
