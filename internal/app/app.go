package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/recensio/internal/common"
	"github.com/ternarybob/recensio/internal/handlers"
	"github.com/ternarybob/recensio/internal/jobs"
	"github.com/ternarybob/recensio/internal/services/harvest"
	"github.com/ternarybob/recensio/internal/storage/artifact"
)

// App owns the wired service graph. Everything is constructed here once and
// passed down explicitly.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Store      *jobs.Store
	Artifacts  *artifact.Writer
	Harvester  *harvest.Service
	JobService *jobs.Service
	Sweeper    *jobs.RetentionSweeper

	ReviewHandler *handlers.ReviewHandler
	APIHandler    *handlers.APIHandler
}

// New wires the application from configuration.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	store := jobs.NewStore(logger)
	artifacts := artifact.NewWriter(&config.Storage, logger)

	harvester := harvest.NewService(config, artifacts, logger)
	jobService := jobs.NewService(store, harvester, logger)

	sweeper, err := jobs.NewRetentionSweeper(&config.Retention, store, artifacts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create retention sweeper: %w", err)
	}
	if sweeper != nil {
		sweeper.Start()
	}

	return &App{
		Config:        config,
		Logger:        logger,
		Store:         store,
		Artifacts:     artifacts,
		Harvester:     harvester,
		JobService:    jobService,
		Sweeper:       sweeper,
		ReviewHandler: handlers.NewReviewHandler(jobService, artifacts, logger),
		APIHandler:    handlers.NewAPIHandler(store, logger),
	}, nil
}

// Close stops background components.
func (a *App) Close() {
	if a.Sweeper != nil {
		a.Sweeper.Stop()
	}
}
