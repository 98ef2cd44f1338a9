package app

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"playlist-crawler/internal/browser"
	"playlist-crawler/internal/config"
	"playlist-crawler/internal/crawler"
	"playlist-crawler/internal/crawler/engine"
	"playlist-crawler/internal/server"
	"playlist-crawler/internal/storage"
	"playlist-crawler/pkg/models"
)

// App is the wired crawler shared by the server and the CLI.
type App struct {
	Engine  *engine.Engine
	Metrics *crawler.Metrics
	Handler http.Handler
}

// Build wires the crawler from cfg. With a nil db, scratch datasets live in
// memory and run summaries are logged.
func Build(ctx context.Context, cfg *config.Config, db *sql.DB, logger *slog.Logger) (*App, error) {
	metrics := crawler.NewMetrics()

	launcher := browser.NewLauncher(browser.Options{
		UserAgent: cfg.UserAgent,
		ExecPath:  cfg.ChromePath,
		Headless:  cfg.Headless,
		NoSandbox: cfg.NoSandbox,
	})

	orch := crawler.NewOrchestrator(launcher, crawler.OrchestratorConfig{
		ContentTimeout:   cfg.ContentTimeout,
		ImageWaitTimeout: cfg.ImageWaitTimeout,
		Scroll: crawler.ScrollOptions{
			Interval:      cfg.ScrollInterval,
			MaxIterations: cfg.ScrollMaxIterations,
			MaxDuration:   cfg.ScrollMaxDuration,
		},
	}, metrics, logger)

	var (
		opener crawler.StoreOpener
		sink   engine.Sink[models.CrawlRun]
	)
	if db != nil {
		store := storage.NewStorage(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		opener = store.Opener()
		sink = &storage.RunSink{Storage: store}
	} else {
		opener = storage.NewMemoryOpener()
		sink = storage.LogSink{Logger: logger}
	}

	domainMgr := crawler.NewDomainManager(cfg.UserAgent, cfg.RateLimit, cfg.RespectRobots, nil)

	eng := engine.NewEngine(engine.Config{
		Workers:       cfg.Workers,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		RequestBudget: cfg.MaxRequestsPerCrawl,
		JobTimeout:    cfg.JobTimeout,
		AllowedHosts:  cfg.AllowedHosts,
	}, orch, opener, sink, domainMgr, metrics, logger)

	return &App{
		Engine:  eng,
		Metrics: metrics,
		Handler: server.NewHandler(eng, metrics.Registry, logger),
	}, nil
}
