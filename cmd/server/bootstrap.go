package main

import (
	"github.com/ltiit/asterisk-api/internal/config"
	"github.com/ltiit/asterisk-api/internal/handlers"
	"github.com/ltiit/asterisk-api/internal/models"
	"github.com/ltiit/asterisk-api/pkg/logger"
)

// appServices holds the initialized handlers the router needs.
type appServices struct {
	deviceHandler *handlers.DeviceHandler
	healthHandler *handlers.HealthHandler
}

// bootstrap connects to the Asterisk database and wires up the handlers.
func bootstrap(cfg *config.Config) *appServices {
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	logger.Info().
		Str("driver", cfg.Database.Driver).
		Str("filename", cfg.Asterisk.Filename).
		Msg("Connected to Asterisk DB")

	return &appServices{
		deviceHandler: handlers.NewDeviceHandler(models.GetDB(), cfg),
		healthHandler: handlers.NewHealthHandler(),
	}
}
