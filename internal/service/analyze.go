package service

import (
	"context"
	"fmt"

	"github.com/yourname/studyhabits/internal"
	"github.com/yourname/studyhabits/internal/advice"
	"github.com/yourname/studyhabits/internal/storage"
)

// RiskPredictor scores a session; failures are reported inside the
// MLResult, never as an error.
type RiskPredictor interface {
	Predict(input internal.SessionInput) internal.MLResult
}

// adviceFallback is shown when the narrative generator is down, slow or
// unconfigured.
const adviceFallback = "Personalized advice is unavailable right now. Review the recommendations above."

// AnalysisResult is the merged output of one analyzed session.
type AnalysisResult struct {
	Input           internal.SessionInput  `json:"input_data"`
	RuleAnalysis    internal.RuleResult    `json:"rule_based_analysis"`
	MLPrediction    internal.MLResult      `json:"ml_prediction"`
	Recommendations []string               `json:"recommendations"`
	Advice          string                 `json:"advice"`
	Session         *internal.StudySession `json:"session"`
}

// AnalyzeSession runs the rule engine and the risk predictor over one
// submitted session, merges their recommendations, fetches narrative
// advice and persists the session. Prediction and advice failures
// degrade the corresponding fields; only a store failure aborts.
func AnalyzeSession(ctx context.Context, sessions storage.SessionRepository, predictor RiskPredictor, coach advice.Advisor, logger internal.Logger, req *AnalyzeRequest) (*AnalysisResult, error) {
	input := req.Input()

	ruleResult := AnalyzeStudySession(input)

	mlResult := predictor.Predict(input)
	if mlResult.Error != "" {
		logger.Warnf("analyze: risk prediction degraded for %q: %s", input.Username, mlResult.Error)
	}

	if mlResult.RiskScore != nil {
		score := *mlResult.RiskScore
		if score > 70 {
			ruleResult.Recommendations = append(ruleResult.Recommendations,
				fmt.Sprintf("Critical burnout risk (%.1f%%). Consider immediate rest and consultation.", score))
		} else if score > 50 {
			ruleResult.Recommendations = append(ruleResult.Recommendations,
				fmt.Sprintf("High burnout risk (%.1f%%). Schedule downtime soon.", score))
		}
	}
	combined := dedupe(ruleResult.Recommendations)

	adviceText := adviceFallback
	if text, err := coach.Advise(ctx, input, ruleResult, mlResult); err != nil {
		logger.Warnf("analyze: advice generation failed for %q: %v", input.Username, err)
	} else {
		adviceText = text
	}

	session := &internal.StudySession{
		Username:           input.Username,
		StudyHours:         internal.Float64Or(input.StudyHours, 0),
		SleepHours:         internal.Float64Or(input.SleepHours, 0),
		BreakFrequency:     internal.IntOr(input.BreakFrequency, 0),
		ConcentrationLevel: internal.IntOr(input.ConcentrationLevel, 0),
		RiskScore:          mlResult.RiskScore,
	}
	if err := sessions.AppendSession(ctx, session); err != nil {
		return nil, fmt.Errorf("analyze: persist session: %w", err)
	}
	session.RiskLevel = internal.RiskLevelFor(session.RiskScore)

	return &AnalysisResult{
		Input:           input,
		RuleAnalysis:    ruleResult,
		MLPrediction:    mlResult,
		Recommendations: combined,
		Advice:          adviceText,
		Session:         session,
	}, nil
}

// dedupe removes repeated recommendations keeping first-occurrence
// order, so responses are deterministic.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
