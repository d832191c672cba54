package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/selgo-dev/selgo-web/internal/config"
	"github.com/selgo-dev/selgo-web/internal/database"
	"github.com/selgo-dev/selgo-web/internal/logger"
)

// environment is what the database-backed commands share
type environment struct {
	cfg    *config.Config
	db     *gorm.DB
	logger zerolog.Logger
}

func openEnvironment() (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Keep command output readable
	logger.Init("warn", "console")
	log := logger.GetLogger()

	db, err := database.Open(cfg.Database.URL, log)
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, db: db, logger: log}, nil
}

func (e *environment) Close() {
	_ = database.Close(e.db)
}
