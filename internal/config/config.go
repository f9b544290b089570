package config

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	Port     string

	CORSOrigin string

	StorageBackend string // file, sqlite or postgres
	PostgresDSN    string
	SQLitePath     string
	SessionsFile   string

	ModelPath string

	AdviceBaseURL string
	AdviceAPIKey  string
	AdviceModel   string
	AdviceTimeout time.Duration
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = &Config{
			Env:            getEnv("APP_ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			Port:           getEnv("PORT", "8088"),
			CORSOrigin:     getEnv("CORS_ORIGIN", "http://localhost:3000"),
			StorageBackend: getEnv("STORAGE_BACKEND", "sqlite"),
			PostgresDSN:    getEnv("POSTGRES_DSN", ""),
			SQLitePath:     getEnv("SQLITE_PATH", "data/study_habits.db"),
			SessionsFile:   getEnv("SESSIONS_FILE", "data/study_sessions.json"),
			ModelPath:      getEnv("MODEL_PATH", "data/burnout_model.json"),
			AdviceBaseURL:  getEnv("OPENAI_BASE_URL", ""),
			AdviceAPIKey:   getEnv("OPENAI_API_KEY", ""),
			AdviceModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			AdviceTimeout:  getDuration("ADVICE_TIMEOUT", 10*time.Second),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	case "file":
		if c.SessionsFile == "" {
			return errors.New("SESSIONS_FILE is required when STORAGE_BACKEND=file")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: file, sqlite, postgres")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.AdviceTimeout <= 0 {
		return errors.New("ADVICE_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
