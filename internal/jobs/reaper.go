package jobs

import (
	"context"
	"log/slog"
	"time"
)

// Reaper periodically evicts expired jobs and results. It runs for the
// lifetime of the process and survives any failure inside a cycle.
type Reaper struct {
	jobs     *Store
	results  *ResultCache
	interval time.Duration
	logger   *slog.Logger
}

// NewReaper creates a reaper sweeping both stores every interval.
func NewReaper(jobs *Store, results *ResultCache, interval time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		jobs:     jobs,
		results:  results,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on a fixed ticker until the context is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	r.logger.Info("reaper started", slog.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopped")
			return
		case <-ticker.C:
			r.RunOnce(time.Now())
		}
	}
}

// RunOnce performs a single sweep cycle: expired jobs, then expired results,
// then jobs left dangling by the results that were just removed. A job that
// is still processing is never removed here; its executor may still write
// to it. Panics are recovered so one bad cycle cannot kill the loop.
func (r *Reaper) RunOnce(now time.Time) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("reaper cycle panicked", slog.Any("panic", p))
		}
	}()

	removedJobs := r.jobs.SweepExpired(now)
	for _, id := range removedJobs {
		r.logger.Info("reaped expired job", slog.String("job_id", id))
	}

	removedResults := r.results.SweepExpired(now)
	for _, id := range removedResults {
		r.logger.Info("reaped expired result", slog.String("result_id", id))
		if r.jobs.DeleteByResult(id) {
			r.logger.Info("removed job for expired result", slog.String("result_id", id))
		}
	}
}
