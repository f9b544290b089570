package api

import (
	"github.com/yourname/studyhabits/internal"
	"github.com/yourname/studyhabits/internal/advice"
	"github.com/yourname/studyhabits/internal/service"
	"github.com/yourname/studyhabits/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Sessions() storage.SessionRepository
	Predictor() service.RiskPredictor
	Coach() advice.Advisor
}
