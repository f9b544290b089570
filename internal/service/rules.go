package service

import "github.com/yourname/studyhabits/internal"

// Defaults applied when a field is absent; the rule engine never fails.
const (
	defaultBreakFrequency     = 60
	defaultConcentrationLevel = 3
)

// AnalyzeStudySession maps one session's raw inputs to warnings,
// recommendations and a coarse burnout classification. Pure and
// deterministic: checks run in a fixed order and accumulate into
// ordered slices.
func AnalyzeStudySession(input internal.SessionInput) internal.RuleResult {
	studyHours := internal.Float64Or(input.StudyHours, 0)
	sleepHours := internal.Float64Or(input.SleepHours, 0)
	breakFreq := internal.IntOr(input.BreakFrequency, defaultBreakFrequency)
	concentration := internal.IntOr(input.ConcentrationLevel, defaultConcentrationLevel)

	warnings := []string{}
	recommendations := []string{}

	if studyHours > 9 {
		warnings = append(warnings, "Studying over 9 hours may lead to fatigue.")
		recommendations = append(recommendations, "Try to limit study time to 8-9 hours.")
	} else if studyHours < 3 {
		recommendations = append(recommendations, "Try to study at least 4-6 hours if possible.")
	}

	if sleepHours < 5.5 {
		warnings = append(warnings, "Less than 6 hours of sleep affects focus.")
		recommendations = append(recommendations, "Aim for at least 7-8 hours of sleep.")
	}

	if breakFreq < 20 {
		warnings = append(warnings, "Too few breaks can reduce concentration.")
		recommendations = append(recommendations, "Take short breaks every 30-45 minutes.")
	}

	if concentration <= 2 {
		warnings = append(warnings, "Low concentration reported.")
		recommendations = append(recommendations, "Minimize distractions or try a new study time.")
	} else if concentration == 3 {
		recommendations = append(recommendations, "Average focus reported, short breaks may help.")
	}

	// Only the first matching combined condition fires.
	if studyHours > 9 && sleepHours < 6 {
		warnings = append(warnings, "High study time and low sleep increases burnout risk.")
		recommendations = append(recommendations, "Prioritize sleep to recover well.")
	} else if concentration < 3 && sleepHours < 6 {
		warnings = append(warnings, "Low focus and low sleep combined.")
		recommendations = append(recommendations, "Try a nap or improve your sleep routine.")
	}

	level := classifyBurnout(studyHours, sleepHours, breakFreq, concentration)
	return internal.RuleResult{
		Summary: internal.RuleSummary{
			BurnoutRisk: level,
			Status:      level.Status(),
		},
		Warnings:        warnings,
		Recommendations: recommendations,
	}
}

// classifyBurnout scores the session against coarser cutoffs than the
// individual checks above; it is a separate classifier, not an
// aggregate of them.
func classifyBurnout(studyHours, sleepHours float64, breakFreq, concentration int) internal.BurnoutLevel {
	score := 0
	if studyHours > 8 {
		score += 2
	}
	if sleepHours < 6 {
		score += 2
	}
	if breakFreq < 25 {
		score += 2
	}
	if concentration < 3 {
		score += 2
	}
	return levelForScore(score)
}

func levelForScore(score int) internal.BurnoutLevel {
	switch {
	case score >= 6:
		return internal.BurnoutHigh
	case score >= 3:
		return internal.BurnoutModerate
	default:
		return internal.BurnoutLow
	}
}
