package app

import (
	"fmt"

	"gorm.io/gorm"

	"sasamom-server/internal/config"
	"sasamom-server/internal/jobs"
	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
	"sasamom-server/internal/reminders"
	"sasamom-server/internal/repos"
	"sasamom-server/internal/scheduling"
	"sasamom-server/internal/sms"
)

// App is the wiring shared by the HTTP server and the CLI.
type App struct {
	Config     *config.Config
	Log        *logger.Logger
	DB         *gorm.DB
	Repos      *repos.Repos
	Gateway    sms.Gateway
	Scheduler  *scheduling.Service
	Dispatcher *reminders.Dispatcher
	Runner     *jobs.Runner
}

// New connects and migrates the database and builds every service. Missing
// SMS credentials are not an error here; each reminder sweep checks them.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := models.InitDB(models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return Wire(cfg, log, db, sms.NewTwilioClient(log, cfg.SMS)), nil
}

// Wire builds the services over an open database and a gateway.
func Wire(cfg *config.Config, log *logger.Logger, db *gorm.DB, gateway sms.Gateway) *App {
	r := repos.New(db, log)
	scheduler := scheduling.NewService(r, scheduling.ParsePolicy(cfg.Scheduler.DuplicatePolicy), log)
	dispatcher := reminders.NewDispatcher(r, gateway, cfg.SMS, log)
	return &App{
		Config:     cfg,
		Log:        log,
		DB:         db,
		Repos:      r,
		Gateway:    gateway,
		Scheduler:  scheduler,
		Dispatcher: dispatcher,
		Runner:     jobs.NewRunner(scheduler, dispatcher, log),
	}
}

// Close releases the database connection pool.
func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
