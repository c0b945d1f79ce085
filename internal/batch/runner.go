// Package batch orchestrates a full collection run: crawl every
// configured source, drop items already stored, translate the rest
// and persist them, recording progress in the job table.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Strangekim/jabdonsani/internal/store"
	"github.com/Strangekim/jabdonsani/pkg/alert"
	"github.com/Strangekim/jabdonsani/pkg/crawler"
	"github.com/Strangekim/jabdonsani/pkg/translate"
)

// ErrAlreadyRunning is returned by Start when another batch job is
// still in progress.
var ErrAlreadyRunning = errors.New("batch job already running")

// Translator turns raw items into persisted-ready translated items.
type Translator interface {
	Translate(ctx context.Context, item crawler.RawItem, cls crawler.Classification) (*translate.ProcessedItem, error)
}

// Runner drives batch jobs.
type Runner struct {
	store      store.Store
	crawlers   crawler.Registry
	translator Translator
	sources    []crawler.Config
	alerts     *alert.Manager
	logger     *zap.SugaredLogger

	now func() time.Time
}

// New builds a Runner over the given store, crawler registry and
// translator. alerts may be nil.
func New(st store.Store, reg crawler.Registry, tr Translator, sources []crawler.Config, alerts *alert.Manager, logger *zap.SugaredLogger) *Runner {
	return &Runner{
		store:      st,
		crawlers:   reg,
		translator: tr,
		sources:    sources,
		alerts:     alerts,
		logger:     logger,
		now:        time.Now,
	}
}

// NewJobID derives a job identifier from the start time, to minute
// precision. Runs within the same minute share an id and the second
// insert fails, which doubles as a rapid-retrigger guard.
func NewJobID(t time.Time) string {
	return "batch_" + t.UTC().Format("20060102_1504")
}

// Start launches a batch job in the background and returns its id
// immediately. If a job is already running it returns
// ErrAlreadyRunning. The check and the insert are not atomic; two
// callers racing through this window both get a job, and the id
// collision resolves all but one.
func (r *Runner) Start(ctx context.Context) (string, error) {
	running, err := r.store.AnyJobRunning(ctx)
	if err != nil {
		return "", fmt.Errorf("check running jobs: %w", err)
	}
	if running {
		return "", ErrAlreadyRunning
	}

	startedAt := r.now()
	jobID := NewJobID(startedAt)
	if err := r.store.CreateJob(ctx, jobID, startedAt); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	// The job outlives the triggering request.
	go r.execute(context.Background(), jobID, startedAt)

	return jobID, nil
}

// RunOnce executes a batch job synchronously. Used by the CLI.
func (r *Runner) RunOnce(ctx context.Context) (string, error) {
	running, err := r.store.AnyJobRunning(ctx)
	if err != nil {
		return "", fmt.Errorf("check running jobs: %w", err)
	}
	if running {
		return "", ErrAlreadyRunning
	}

	startedAt := r.now()
	jobID := NewJobID(startedAt)
	if err := r.store.CreateJob(ctx, jobID, startedAt); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	r.execute(ctx, jobID, startedAt)
	return jobID, nil
}

func (r *Runner) execute(ctx context.Context, jobID string, startedAt time.Time) {
	r.logger.Infow("batch started", "job_id", jobID, "sources", len(r.sources))

	var totalItems, totalErrors int
	for _, cfg := range r.sources {
		items, errs := r.runSource(ctx, jobID, cfg)
		totalItems += items
		totalErrors += errs
	}

	if err := r.store.CompleteJob(ctx, jobID, totalItems, totalErrors); err != nil {
		r.logger.Errorw("batch finalize failed", "job_id", jobID, "error", err)
		if ferr := r.store.FailJob(ctx, jobID, err.Error()); ferr != nil {
			r.logger.Errorw("batch fail-mark failed", "job_id", jobID, "error", ferr)
		}
		return
	}

	duration := r.now().Sub(startedAt)
	r.logger.Infow("batch completed",
		"job_id", jobID, "items", totalItems, "errors", totalErrors,
		"duration", duration.Round(time.Second))

	if r.alerts != nil && r.alerts.HasNotifiers() {
		if err := r.alerts.Broadcast(ctx, &alert.Notification{
			JobID:    jobID,
			Items:    totalItems,
			Errors:   totalErrors,
			Duration: duration,
		}); err != nil {
			r.logger.Warnw("alert broadcast failed", "job_id", jobID, "error", err)
		}
	}
}

// runSource crawls, dedups, translates and persists one source. A
// failure that takes out the whole source (crawl error or panic)
// counts as a single error; per-item failures count individually.
func (r *Runner) runSource(ctx context.Context, jobID string, cfg crawler.Config) (items, errs int) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorw("source panicked",
				"job_id", jobID, "source", cfg.Source, "panic", rec)
			items, errs = 0, 1
		}
	}()

	c, ok := r.crawlers[cfg.Source]
	if !ok {
		r.logger.Errorw("no crawler registered", "job_id", jobID, "source", cfg.Source)
		return 0, 1
	}

	raw, err := c.Crawl(ctx, cfg)
	if err != nil {
		r.logger.Errorw("crawl failed", "job_id", jobID, "source", cfg.Source, "error", err)
		return 0, 1
	}

	ids := make([]string, len(raw))
	for i, it := range raw {
		ids[i] = it.OriginalID
	}
	existing, err := r.store.ExistingOriginalIDs(ctx, cfg.Source, ids)
	if err != nil {
		r.logger.Errorw("dedup check failed", "job_id", jobID, "source", cfg.Source, "error", err)
		return 0, 1
	}

	for _, item := range raw {
		if existing[item.OriginalID] {
			continue
		}

		processed, err := r.translator.Translate(ctx, item, cfg.Classification)
		if err != nil {
			r.logger.Warnw("translate failed",
				"job_id", jobID, "source", cfg.Source, "id", item.OriginalID, "error", err)
			errs++
			continue
		}

		if err := r.store.UpsertTrend(ctx, processed, jobID); err != nil {
			r.logger.Warnw("persist failed",
				"job_id", jobID, "source", cfg.Source, "id", item.OriginalID, "error", err)
			errs++
			continue
		}
		items++
	}

	r.logger.Infow("source done",
		"job_id", jobID, "source", cfg.Source, "crawled", len(raw),
		"skipped", len(existing), "saved", items, "errors", errs)
	return items, errs
}
