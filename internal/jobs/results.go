package jobs

import (
	"log/slog"
	"sync"
	"time"
)

// Result is the cached artifact produced by a completed job.
type Result struct {
	Content   string
	Filename  string
	CreatedAt time.Time
}

// ResultCache holds finished reports until their TTL passes. Expiry is
// enforced lazily on Get and proactively by the reaper sweep; Get is the
// single source of truth for whether a result is still valid.
type ResultCache struct {
	mu      sync.Mutex
	results map[string]Result
	ttl     time.Duration
	logger  *slog.Logger

	now func() time.Time
}

// NewResultCache creates a result cache with the given TTL.
func NewResultCache(ttl time.Duration, logger *slog.Logger) *ResultCache {
	return &ResultCache{
		results: make(map[string]Result),
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// TTL returns the configured result time-to-live.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Put stores a result. An existing entry under the same ID is overwritten.
func (c *ResultCache) Put(resultID, content, filename string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.results[resultID] = Result{
		Content:   content,
		Filename:  filename,
		CreatedAt: c.now(),
	}
	c.logger.Info("result stored",
		slog.String("result_id", resultID),
		slog.Int("size", len(content)),
	)
}

// Get returns a copy of the result if it is present and still within its
// TTL. An expired entry is deleted on the spot and reported absent, so no
// caller ever observes a stale artifact even if the reaper has not run yet.
func (c *ResultCache) Get(resultID string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, ok := c.results[resultID]
	if !ok {
		return Result{}, false
	}
	if !c.now().Before(res.CreatedAt.Add(c.ttl)) {
		delete(c.results, resultID)
		c.logger.Info("result expired on read", slog.String("result_id", resultID))
		return Result{}, false
	}
	return res, true
}

// SweepExpired removes every result past its TTL, returning the removed IDs.
// It bounds memory growth for results never touched by Get again.
func (c *ResultCache) SweepExpired(now time.Time) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []string
	for id, res := range c.results {
		if !now.Before(res.CreatedAt.Add(c.ttl)) {
			delete(c.results, id)
			removed = append(removed, id)
		}
	}
	return removed
}
