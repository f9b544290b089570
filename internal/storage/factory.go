package storage

import (
	"fmt"

	"github.com/yourname/studyhabits/internal"
	"github.com/yourname/studyhabits/internal/config"
)

func NewSessionRepository(cfg *config.Config, logger internal.Logger) (SessionRepository, error) {
	switch cfg.StorageBackend {
	case "postgres":
		return NewPostgresStore(cfg.PostgresDSN, logger)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath, logger)
	case "file":
		return NewFileStore(cfg.SessionsFile, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StorageBackend)
	}
}
