package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"playlist-crawler/internal"
	"playlist-crawler/internal/crawler"
	"playlist-crawler/pkg/models"
)

// Sink defines how to persist finished run summaries.
type Sink[T any] interface {
	Save(ctx context.Context, batch []T) error
}

// Config holds worker settings.
type Config struct {
	Workers       int
	BatchSize     int
	FlushInterval time.Duration
	RequestBudget int

	// JobTimeout bounds one crawl from store acquisition to release.
	JobTimeout time.Duration

	// AllowedHosts limits which playlist hosts may be crawled; empty allows any.
	AllowedHosts []string
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 2 * time.Second
	}
	if c.RequestBudget <= 0 {
		c.RequestBudget = crawler.DefaultRequestBudget
	}
	return c
}

type task struct {
	ctx   context.Context
	req   models.PlaylistRequest
	reply chan outcome
}

type outcome struct {
	result models.PlaylistResult
	err    error
}

// Engine admits playlist scrapes onto a fixed pool of crawl workers, each
// of which owns one browser page at a time.
type Engine struct {
	config       Config
	orchestrator *crawler.Orchestrator
	opener       crawler.StoreOpener
	sink         Sink[models.CrawlRun]
	domainMgr    *crawler.DomainManager
	metrics      *crawler.Metrics
	logger       *slog.Logger
	filter       crawler.HostFilter

	// State
	inFlight  *internal.SafeMap
	tasks     chan task
	runs      chan models.CrawlRun
	stopped   chan struct{}
	stopOnce  sync.Once
	waitGroup sync.WaitGroup
}

// NewEngine wires an engine. sink and domainMgr may be nil.
func NewEngine(cfg Config, orch *crawler.Orchestrator, opener crawler.StoreOpener, sink Sink[models.CrawlRun],
	domainMgr *crawler.DomainManager, metrics *crawler.Metrics, logger *slog.Logger) *Engine {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		config:       cfg,
		orchestrator: orch,
		opener:       opener,
		sink:         sink,
		domainMgr:    domainMgr,
		metrics:      metrics,
		logger:       logger,
		filter:       crawler.NewHostFilter(cfg.AllowedHosts),
		inFlight:     internal.NewSafeMap(),
		tasks:        make(chan task, cfg.Workers*4),
		runs:         make(chan models.CrawlRun, max(cfg.BatchSize*2, 64)),
		stopped:      make(chan struct{}),
	}
}

// Run starts the workers and blocks until ctx is cancelled and every
// worker has returned. It must be called once.
func (engine *Engine) Run(ctx context.Context) {
	// 1. Start Storage Worker
	if engine.sink != nil {
		engine.waitGroup.Add(1)
		go engine.startStorageWorker(ctx)
	}

	// 2. Start Crawler Workers
	for i := 0; i < engine.config.Workers; i++ {
		engine.waitGroup.Add(1)
		go engine.startCrawlWorker(ctx, i)
	}

	engine.logger.Info("Engine started", slog.Int("workers", engine.config.Workers))
	<-ctx.Done()
	engine.stopOnce.Do(func() { close(engine.stopped) })
	engine.waitGroup.Wait()
}

// InFlight is the number of jobs currently being crawled.
func (engine *Engine) InFlight() int {
	return engine.inFlight.Len()
}

// Scrape crawls one playlist and returns its videos and chart series. Input
// errors come back as crawler.InvalidInputError; every other failure wraps
// crawler.ErrScrapeFailed.
func (engine *Engine) Scrape(ctx context.Context, rawURL string) (models.PlaylistResult, error) {
	req, err := models.ParsePlaylistRequest(rawURL)
	if err != nil {
		engine.metrics.IncError("invalid_input")
		return models.PlaylistResult{}, crawler.InvalidInputError{Err: err}
	}
	if !engine.filter.Allow(req.URL) {
		engine.metrics.IncError("invalid_input")
		return models.PlaylistResult{}, crawler.InvalidInputError{
			Err: fmt.Errorf("%w: host not allowed", models.ErrInvalidPlaylistURL),
		}
	}

	t := task{ctx: ctx, req: req, reply: make(chan outcome, 1)}
	select {
	case engine.tasks <- t:
	case <-ctx.Done():
		return models.PlaylistResult{}, fmt.Errorf("%w: %w", crawler.ErrScrapeFailed, ctx.Err())
	case <-engine.stopped:
		return models.PlaylistResult{}, fmt.Errorf("%w: engine stopped", crawler.ErrScrapeFailed)
	}

	select {
	case out := <-t.reply:
		if out.err != nil {
			return models.PlaylistResult{}, fmt.Errorf("%w: %w", crawler.ErrScrapeFailed, out.err)
		}
		return out.result, nil
	case <-ctx.Done():
		return models.PlaylistResult{}, fmt.Errorf("%w: %w", crawler.ErrScrapeFailed, ctx.Err())
	case <-engine.stopped:
		return models.PlaylistResult{}, fmt.Errorf("%w: engine stopped", crawler.ErrScrapeFailed)
	}
}

func (engine *Engine) startCrawlWorker(ctx context.Context, id int) {
	defer engine.waitGroup.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-engine.tasks:
			if err := t.ctx.Err(); err != nil {
				t.reply <- outcome{err: err}
				continue
			}
			result, err := engine.process(t.ctx, id, t.req)
			t.reply <- outcome{result: result, err: err}
		}
	}
}

func (engine *Engine) process(ctx context.Context, workerID int, req models.PlaylistRequest) (result models.PlaylistResult, err error) {
	start := time.Now()
	job := crawler.NewJob(req, engine.config.RequestBudget)
	log := engine.logger.With(
		slog.Int("worker", workerID),
		slog.String("job_id", job.ID),
		slog.String("url", req.URL),
	)

	run := models.CrawlRun{
		JobID:      job.ID,
		URL:        req.URL,
		PlaylistID: req.PlaylistID,
		StartedAt:  start,
	}
	defer func() {
		run.State = job.State()
		if err != nil {
			run.State = models.Failed
		}
		run.ErrorKind = crawler.ErrorKind(err)
		run.Duration = time.Since(start)
		engine.metrics.ObserveJob(outcomeLabel(err), run.Duration)
		engine.emit(run, log)
	}()

	// The key only tracks live jobs. Repeat URLs still navigate because every
	// job gets its own browser with the HTTP cache disabled.
	key := job.UniqueKey()
	engine.inFlight.Add(key)
	defer engine.inFlight.Delete(key)

	// Checks & Rate Limiting handled by the Engine, not the Orchestrator
	if engine.domainMgr != nil {
		if !engine.domainMgr.IsAllowed(ctx, req.URL) {
			return result, crawler.NavigationFaultError{Err: crawler.ErrDisallowed}
		}
		if err := engine.domainMgr.Wait(ctx, req.URL); err != nil {
			return result, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	jobCtx, cancel := ctx, context.CancelFunc(func() {})
	if engine.config.JobTimeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, engine.config.JobTimeout)
	}
	defer cancel()

	store, err := engine.opener.Open(jobCtx, job.ID)
	if err != nil {
		return result, fmt.Errorf("open scratch store: %w", err)
	}
	var dropOnce sync.Once
	release := func() {
		dropOnce.Do(func() {
			dropCtx, dropCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer dropCancel()
			if derr := store.Drop(dropCtx); derr != nil {
				log.Warn("drop scratch store", slog.Any("error", derr))
			}
		})
	}
	defer release()
	job.Store = store

	engine.metrics.JobStarted()
	defer engine.metrics.JobFinished()

	if err := engine.orchestrator.Run(jobCtx, job); err != nil {
		return result, err
	}

	items, err := store.ReadAll(jobCtx)
	if err != nil {
		return result, fmt.Errorf("read dataset: %w", err)
	}
	release()

	var videos []models.VideoRecord
	if len(items) > 0 {
		videos = items[0].Videos
	}
	run.VideoCount = len(videos)
	return models.NewPlaylistResult(videos), nil
}

// emit hands a run summary to the storage worker without blocking the crawl.
func (engine *Engine) emit(run models.CrawlRun, log *slog.Logger) {
	if engine.sink == nil {
		return
	}
	select {
	case engine.runs <- run:
	default:
		log.Warn("run history buffer full, dropping summary")
	}
}

func (engine *Engine) startStorageWorker(ctx context.Context) {
	defer engine.waitGroup.Done()
	buffer := make([]models.CrawlRun, 0, engine.config.BatchSize)
	ticker := time.NewTicker(engine.config.FlushInterval)
	defer ticker.Stop()

	flush := func(ctx context.Context) {
		if len(buffer) == 0 {
			return
		}
		if err := engine.sink.Save(ctx, buffer); err != nil {
			engine.logger.Error("Failed to save batch", slog.Any("error", err))
		} else {
			engine.logger.Debug("Saved batch", slog.Int("runs", len(buffer)))
		}
		buffer = buffer[:0] // Reset buffer
	}

	for {
		select {
		case <-ctx.Done():
			// Pick up whatever is already queued before the final flush.
			for {
				select {
				case run := <-engine.runs:
					buffer = append(buffer, run)
					continue
				default:
				}
				break
			}
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			flush(flushCtx)
			cancel()
			return
		case run := <-engine.runs:
			buffer = append(buffer, run)
			if len(buffer) >= engine.config.BatchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}

func outcomeLabel(err error) string {
	switch crawler.ErrorKind(err) {
	case "none":
		return "completed"
	case "canceled":
		return "canceled"
	default:
		return "failed"
	}
}
