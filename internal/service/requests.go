package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/yourname/studyhabits/internal"
)

var validate = validator.New()

// AnalyzeRequest is the submit-a-study-session payload. Optional fields
// stay nil when absent so downstream components can tell missing from
// zero.
type AnalyzeRequest struct {
	Username           string   `json:"username" validate:"required"`
	StudyHours         *float64 `json:"study_hours" validate:"omitempty,gte=0"`
	SleepHours         *float64 `json:"sleep_hours" validate:"omitempty,gte=0"`
	BreakFrequency     *int     `json:"break_frequency" validate:"omitempty,gte=0"`
	ConcentrationLevel *int     `json:"concentration_level" validate:"omitempty,gte=1,lte=5"`
}

func ValidateAnalyzeRequest(body *AnalyzeRequest) error {
	return validate.Struct(body)
}

func (r *AnalyzeRequest) Input() internal.SessionInput {
	return internal.SessionInput{
		Username:           r.Username,
		StudyHours:         r.StudyHours,
		SleepHours:         r.SleepHours,
		BreakFrequency:     r.BreakFrequency,
		ConcentrationLevel: r.ConcentrationLevel,
	}
}
