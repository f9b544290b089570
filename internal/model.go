package internal

import (
	"fmt"
	"time"
)

// BurnoutLevel is the coarse rule-based classification of one session.
type BurnoutLevel string

const (
	BurnoutLow      BurnoutLevel = "Low"
	BurnoutModerate BurnoutLevel = "Moderate"
	BurnoutHigh     BurnoutLevel = "High"
)

// Status returns the fixed status sentence for the level.
func (l BurnoutLevel) Status() string {
	switch l {
	case BurnoutLow:
		return "You're doing great! Keep your routine balanced."
	case BurnoutModerate:
		return "Some signs of stress. Small tweaks can help."
	case BurnoutHigh:
		return "Risk detected. Review your habits soon."
	}
	return ""
}

// Window selects how far back history queries and deletions reach.
type Window string

const (
	WindowAll   Window = "all"
	WindowHour  Window = "hour"
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

var windowDurations = map[Window]time.Duration{
	WindowHour:  time.Hour,
	WindowDay:   24 * time.Hour,
	WindowWeek:  7 * 24 * time.Hour,
	WindowMonth: 30 * 24 * time.Hour,
}

// ParseWindow validates a raw range string against the closed set of
// supported windows.
func ParseWindow(s string) (Window, error) {
	w := Window(s)
	if w == WindowAll {
		return w, nil
	}
	if _, ok := windowDurations[w]; ok {
		return w, nil
	}
	return "", fmt.Errorf("unknown time range %q", s)
}

// Cutoff returns the inclusive lower bound of the window relative to
// now. The second result is false for the unbounded "all" window.
func (w Window) Cutoff(now time.Time) (time.Time, bool) {
	d, ok := windowDurations[w]
	if !ok {
		return time.Time{}, false
	}
	return now.Add(-d), true
}

// SessionInput carries one submitted study session. Optional numeric
// fields are pointers so "absent" stays distinguishable from zero: the
// rule engine substitutes defaults, the predictor refuses to run.
type SessionInput struct {
	Username           string   `json:"username"`
	StudyHours         *float64 `json:"study_hours,omitempty"`
	SleepHours         *float64 `json:"sleep_hours,omitempty"`
	BreakFrequency     *int     `json:"break_frequency,omitempty"`
	ConcentrationLevel *int     `json:"concentration_level,omitempty"`
}

// Float64Or returns *v, or def when v is nil.
func Float64Or(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// IntOr returns *v, or def when v is nil.
func IntOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

type RuleSummary struct {
	BurnoutRisk BurnoutLevel `json:"burnout_risk"`
	Status      string       `json:"status"`
}

// RuleResult is the deterministic output of the rule engine. Warnings
// and recommendations keep their evaluation order.
type RuleResult struct {
	Summary         RuleSummary `json:"summary"`
	Warnings        []string    `json:"warnings"`
	Recommendations []string    `json:"recommendations"`
}

// MLResult is the risk predictor's output. RiskScore and Error are
// mutually exclusive; ModelVersion is set only alongside a score.
type MLResult struct {
	RiskScore    *float64 `json:"risk_score"`
	ModelVersion string   `json:"model_version,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Risk levels derived from a stored risk score when history is read.
const (
	RiskLevelHigh   = "high"
	RiskLevelMedium = "medium"
	RiskLevelLow    = "low"
)

// RiskLevelFor maps a stored risk score to the level shown in history
// listings. A nil score falls through to "low".
func RiskLevelFor(score *float64) string {
	switch {
	case score != nil && *score > 70:
		return RiskLevelHigh
	case score != nil && *score > 40:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// StudySession is one persisted analysis record. ID and Timestamp are
// store-assigned; rows are never mutated after creation. RiskLevel is
// derived at read time and not persisted.
type StudySession struct {
	ID                 int64     `json:"id"`
	Username           string    `json:"username"`
	Timestamp          time.Time `json:"timestamp"`
	StudyHours         float64   `json:"study_hours"`
	SleepHours         float64   `json:"sleep_hours"`
	BreakFrequency     int       `json:"break_frequency"`
	ConcentrationLevel int       `json:"concentration_level"`
	RiskScore          *float64  `json:"risk_score"`
	RiskLevel          string    `json:"risk_level,omitempty"`
}

// AppError is the error payload carried inside API responses.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}
