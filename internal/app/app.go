// -----------------------------------------------------------------------
// Application wiring - storage, engine, sources, monitor, feed
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/services/analysis"
	"github.com/ternarybob/auspex/internal/services/feed"
	"github.com/ternarybob/auspex/internal/services/mailwatch"
	"github.com/ternarybob/auspex/internal/services/monitor"
	"github.com/ternarybob/auspex/internal/services/notify"
	"github.com/ternarybob/auspex/internal/services/pdf"
	"github.com/ternarybob/auspex/internal/services/scraper"
	"github.com/ternarybob/auspex/internal/services/summary"
	"github.com/ternarybob/auspex/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	DB        *badger.BadgerDB
	SeenStore interfaces.SeenStore

	Engine    *analysis.Engine
	Scraper   *scraper.Service
	Extractor *pdf.Extractor
	Renderer  *pdf.Renderer
	Notifier  *notify.Service
	Summary   *summary.Service
	Inbox     *mailwatch.Service
	Feed      *feed.Hub
	Monitor   *monitor.Service
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	db, err := badger.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.DB = db
	app.SeenStore = badger.NewSeenStore(db, logger)
	logger.Debug().
		Str("storage", "badger").
		Str("path", cfg.Storage.Badger.Path).
		Msg("Storage layer initialized")

	engine, err := analysis.NewEngine(&cfg.Analysis, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize analysis engine: %w", err)
	}
	app.Engine = engine

	app.Scraper = scraper.NewService(&cfg.Scraper, logger)
	app.Extractor = pdf.NewExtractor(logger)
	app.Renderer = pdf.NewRenderer(logger)
	app.Notifier = notify.NewService(&cfg.Email, app.Renderer, logger)

	// Nil when LLM summaries are disabled or no API key resolves
	app.Summary = summary.NewService(cfg, logger)

	app.Feed = feed.NewHub(logger)

	var sources []interfaces.AnnouncementSource
	if cfg.Monitor.EnableWeb {
		sources = append(sources, app.Scraper)
	}
	if cfg.Monitor.EnableInbox {
		app.Inbox = mailwatch.NewService(&cfg.Inbox, logger)
		sources = append(sources, app.Inbox)
	}
	if len(sources) == 0 {
		logger.Warn().Msg("No announcement sources enabled, cycles will be empty")
	}

	// A typed nil in the interface would dodge the monitor's nil check
	var summarizer monitor.Summarizer
	if app.Summary != nil {
		summarizer = app.Summary
	}

	app.Monitor = monitor.NewService(
		cfg,
		engine,
		sources,
		app.Scraper,
		app.Extractor,
		app.Notifier,
		summarizer,
		app.Feed,
		app.SeenStore,
		logger,
	)

	logger.Info().
		Bool("web_source", cfg.Monitor.EnableWeb).
		Bool("inbox_source", cfg.Monitor.EnableInbox).
		Bool("email_alerts", app.Notifier.Enabled()).
		Bool("llm_summaries", app.Summary != nil).
		Msg("Application initialization complete")

	return app, nil
}

// Close shuts down application components: scheduler first so no cycle is
// mid-flight, then the feed hub, then storage.
func (a *App) Close() error {
	if a.Monitor != nil {
		a.Monitor.Stop()
	}

	if a.Feed != nil {
		a.Feed.Close()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
