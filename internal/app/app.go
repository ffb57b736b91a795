package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrawl/internal/common"
	"github.com/ternarybob/scrawl/internal/handlers"
	"github.com/ternarybob/scrawl/internal/interfaces"
	"github.com/ternarybob/scrawl/internal/services/crawler"
	"github.com/ternarybob/scrawl/internal/services/scheduler"
	"github.com/ternarybob/scrawl/internal/storage/badger"
)

// App holds all application dependencies, constructed once at startup.
type App struct {
	Config  *common.Config
	Logger  arbor.ILogger
	Storage interfaces.StorageManager

	CrawlerService   interfaces.CrawlerService
	SchedulerService interfaces.SchedulerService

	TaskHandler    *handlers.TaskHandler
	CrawlerHandler *handlers.CrawlerHandler
	APIHandler     *handlers.APIHandler
}

// New wires storage, services and handlers, and reconciles the schedule
// against persisted tasks so enabled tasks are live before the HTTP
// server starts accepting requests.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storage, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	browser := crawler.NewBrowser(config.Crawler, logger)
	crawlerService := crawler.NewService(browser, storage.JobStorage(), storage.PageStorage(), logger)
	schedulerService := scheduler.NewService(storage.TaskStorage(), crawlerService, logger)

	if err := schedulerService.Sync(context.Background()); err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to sync scheduled tasks: %w", err)
	}

	app := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storage,
		CrawlerService:   crawlerService,
		SchedulerService: schedulerService,
		TaskHandler:      handlers.NewTaskHandler(storage.TaskStorage(), schedulerService, logger),
		CrawlerHandler:   handlers.NewCrawlerHandler(crawlerService, storage.PageStorage(), storage.JobStorage(), logger),
		APIHandler:       handlers.NewAPIHandler(),
	}

	logger.Info().Msg("Application initialized")
	return app, nil
}

// Close releases everything in reverse construction order: timers first
// so nothing fires mid-teardown, then the browser, then storage.
func (a *App) Close() {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}
	if a.CrawlerService != nil {
		a.CrawlerService.Shutdown()
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage")
		}
	}
	a.Logger.Info().Msg("Application closed")
}
