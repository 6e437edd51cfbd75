package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"live-trivia/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lmittmann/tint"
)

func main() {
	source := flag.String("source", "file://db/migrations", "migration source URL")
	down := flag.Bool("down", false, "roll back one migration instead of applying all")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, nil))

	if err := config.LoadDotEnv(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is not set")
		os.Exit(1)
	}

	m, err := migrate.New(*source, cfg.DatabaseURL)
	if err != nil {
		logger.Error("migration setup failed", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("database migration failed", "error", err)
		os.Exit(1)
	}
	if err := reportVersion(logger, m); err != nil {
		logger.Error("read migration version", "error", err)
		os.Exit(1)
	}
}

type versioner interface {
	Version() (uint, bool, error)
}

// reportVersion logs the schema version after a run. A database rolled back
// past its first migration has no version.
func reportVersion(logger *slog.Logger, m versioner) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		logger.Info("database has no migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("database migrations applied", "version", version, "dirty", dirty)
	return nil
}
