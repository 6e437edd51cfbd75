package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                     int    `env:"PORT" envDefault:"3001"`
	ClientURL                string `env:"CLIENT_URL" envDefault:"http://localhost:5173"`
	DatabaseURL              string `env:"DATABASE_URL"`
	LogLevel                 string `env:"LOG_LEVEL" envDefault:"info"`
	DBMaxOpenConns           int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns           int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeSeconds int    `env:"DB_CONN_MAX_LIFETIME_SECONDS" envDefault:"300"`
	DBConnMaxIdleTimeSeconds int    `env:"DB_CONN_MAX_IDLE_SECONDS" envDefault:"60"`
	DefaultLives             int    `env:"DEFAULT_LIVES" envDefault:"3"`
	DefaultTotalQuestions    int    `env:"DEFAULT_TOTAL_QUESTIONS" envDefault:"10"`
	MaxNameLength            int    `env:"MAX_NAME_LENGTH" envDefault:"20"`
	MaxAnswerLength          int    `env:"MAX_ANSWER_LENGTH" envDefault:"200"`
}

func Default() Config {
	return Config{
		Port:                     3001,
		ClientURL:                "http://localhost:5173",
		LogLevel:                 "info",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		DefaultLives:             3,
		DefaultTotalQuestions:    10,
		MaxNameLength:            20,
		MaxAnswerLength:          200,
	}
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Port <= 0 {
		return Config{}, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.DefaultLives < 0 {
		return Config{}, fmt.Errorf("invalid DEFAULT_LIVES %d", cfg.DefaultLives)
	}
	if cfg.MaxNameLength <= 0 || cfg.MaxAnswerLength <= 0 {
		return Config{}, fmt.Errorf("name and answer limits must be positive")
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) ConnMaxLifetime() time.Duration {
	return time.Duration(c.DBConnMaxLifetimeSeconds) * time.Second
}

func (c Config) ConnMaxIdleTime() time.Duration {
	return time.Duration(c.DBConnMaxIdleTimeSeconds) * time.Second
}
