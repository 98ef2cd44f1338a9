package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"playlist-crawler/pkg/models"
)

const DefaultContentTimeout = 30 * time.Second

type OrchestratorConfig struct {
	ContentTimeout time.Duration

	// ImageWaitTimeout bounds the image preload; zero leaves only the job
	// context as a bound.
	ImageWaitTimeout time.Duration
	Scroll           ScrollOptions
}

// Orchestrator runs crawl jobs: navigate, wait for items, scroll until the
// list settles, extract, store.
type Orchestrator struct {
	browser Browser
	cfg     OrchestratorConfig
	metrics *Metrics
	logger  *slog.Logger

	// OnFailure is told about every failed job. It must not retry or touch
	// the job's result.
	OnFailure func(job *Job, err error)
}

func NewOrchestrator(browser Browser, cfg OrchestratorConfig, metrics *Metrics, logger *slog.Logger) *Orchestrator {
	if cfg.ContentTimeout <= 0 {
		cfg.ContentTimeout = DefaultContentTimeout
	}
	if cfg.Scroll.Interval <= 0 {
		cfg.Scroll.Interval = DefaultScrollOptions().Interval
	}
	if logger == nil {
		logger = slog.Default()
	}

	o := &Orchestrator{
		browser: browser,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
	o.OnFailure = o.logFailure
	return o
}

// Run drives job from Created to Completed or Failed. On success the job's
// store holds exactly one dataset item. The store is not dropped here; that
// belongs to whoever opened it.
func (o *Orchestrator) Run(ctx context.Context, job *Job) (err error) {
	if job.Store == nil {
		return fmt.Errorf("job %s: no scratch store", job.ID)
	}
	if job.State() != models.Created {
		return fmt.Errorf("job %s: already ran (state %s)", job.ID, job.State())
	}

	log := o.logger.With(slog.String("job_id", job.ID), slog.String("url", job.Request.URL))
	defer func() {
		if err != nil {
			job.fail(err)
			if o.OnFailure != nil {
				o.OnFailure(job, err)
			}
		}
	}()

	page, err := o.browser.NewPage(ctx)
	if err != nil {
		return NavigationFaultError{Err: fmt.Errorf("open page: %w", err)}
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			log.Warn("close page", slog.Any("error", cerr))
		}
	}()
	budgeted := withBudget(page, job.Budget)

	if err := job.advance(models.Navigating); err != nil {
		return err
	}
	log.Info("Processing playlist")
	if err := budgeted.Navigate(ctx, job.Request.URL); err != nil {
		return NavigationFaultError{Err: err}
	}

	if err := job.advance(models.WaitingForInitialContent); err != nil {
		return err
	}
	if err := page.WaitForSelector(ctx, ItemSelector, o.cfg.ContentTimeout); err != nil {
		return ContentNotFoundError{Err: err}
	}

	if err := job.advance(models.Scrolling); err != nil {
		return err
	}
	rounds, err := Stabilize(ctx, page, o.cfg.Scroll)
	o.metrics.ObserveScroll(rounds)
	switch {
	case errors.Is(err, ErrScrollBudget):
		log.Warn("scroll stopped before the list settled", slog.Int("rounds", rounds), slog.Any("error", err))
	case err != nil:
		return fmt.Errorf("scroll: %w", err)
	default:
		log.Debug("list settled", slog.Int("rounds", rounds))
	}

	if err := job.advance(models.Extracting); err != nil {
		return err
	}
	videos, err := o.extract(ctx, page, job, log)
	if err != nil {
		return err
	}
	if err := job.Store.Write(ctx, models.DatasetItem{Videos: videos}); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	items, err := job.Store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	if len(items) != 1 {
		return ExtractionFaultError{Err: fmt.Errorf("scratch store holds %d results, want 1", len(items))}
	}

	if err := job.advance(models.Completed); err != nil {
		return err
	}
	o.metrics.AddVideos(len(videos))
	log.Info("Found videos in the playlist", slog.Int("videos", len(videos)), slog.Int("navigations", budgeted.Used()))
	return nil
}

func (o *Orchestrator) extract(ctx context.Context, page Page, job *Job, log *slog.Logger) (videos []models.VideoRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ExtractionFaultError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	imgCtx, cancel := ctx, context.CancelFunc(func() {})
	if o.cfg.ImageWaitTimeout > 0 {
		imgCtx, cancel = context.WithTimeout(ctx, o.cfg.ImageWaitTimeout)
	}
	imgErr := WaitForImages(imgCtx, page)
	cancel()
	if imgErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("images did not finish loading", slog.Any("error", imgErr))
	}

	nodes, err := page.QueryAll(ctx, ItemSelector)
	if err != nil {
		return nil, ExtractionFaultError{Err: fmt.Errorf("query items: %w", err)}
	}
	if len(nodes) == 0 {
		return nil, ExtractionFaultError{Err: errors.New("no playlist items found")}
	}

	return NewExtractor(job.Request.URL).Extract(nodes), nil
}

func (o *Orchestrator) logFailure(job *Job, err error) {
	kind := ErrorKind(err)
	o.metrics.IncError(kind)
	o.logger.Error("Request failed",
		slog.String("job_id", job.ID),
		slog.String("url", job.Request.URL),
		slog.String("error_type", kind),
		slog.Any("error", err),
	)
}
