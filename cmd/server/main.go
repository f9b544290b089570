package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourname/studyhabits/internal"
	"github.com/yourname/studyhabits/internal/advice"
	"github.com/yourname/studyhabits/internal/api"
	"github.com/yourname/studyhabits/internal/config"
	"github.com/yourname/studyhabits/internal/predict"
	"github.com/yourname/studyhabits/internal/service"
	"github.com/yourname/studyhabits/internal/storage"
)

type app struct {
	logger    internal.Logger
	sessions  storage.SessionRepository
	predictor *predict.Predictor
	coach     advice.Advisor
}

func (a *app) Logger() internal.Logger             { return a.logger }
func (a *app) Sessions() storage.SessionRepository { return a.sessions }
func (a *app) Predictor() service.RiskPredictor    { return a.predictor }
func (a *app) Coach() advice.Advisor               { return a.coach }

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	sessions, err := storage.NewSessionRepository(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	var coach advice.Advisor = advice.Disabled{}
	if cfg.AdviceBaseURL != "" {
		gen := advice.NewOpenAIGenerator(cfg.AdviceBaseURL, cfg.AdviceAPIKey, cfg.AdviceModel)
		coach = advice.NewStudyCoach(gen, cfg.AdviceTimeout)
	} else {
		logger.Warn("no advice generator configured, responses will carry the fallback text")
	}

	a := &app{
		logger:    logger,
		sessions:  sessions,
		predictor: predict.NewPredictor(cfg.ModelPath),
		coach:     coach,
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(a, cfg.CORSOrigin)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logger.Infof("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	if err := sessions.Close(); err != nil {
		logger.Errorf("storage close: %v", err)
	}
}
