package jobs

import (
	"log/slog"
	"sync"
	"time"
)

// Store is the in-memory job store. All state is process-resident and lost
// on restart. Every operation is atomic with respect to all other callers;
// reads hand out copies, never references into the map.
type Store struct {
	mu        sync.RWMutex
	jobs      map[string]Job
	retention time.Duration
	logger    *slog.Logger

	now func() time.Time
}

// NewStore creates a job store. Terminal jobs are kept for retention before
// they become eligible for sweeping.
func NewStore(retention time.Duration, logger *slog.Logger) *Store {
	return &Store{
		jobs:      make(map[string]Job),
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Create inserts a new pending job. The ID is expected to be fresh; an
// existing ID is rejected rather than overwritten.
func (s *Store) Create(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[jobID]; ok {
		return ErrJobExists
	}
	s.jobs[jobID] = Job{
		ID:      jobID,
		Status:  StatusPending,
		Message: "Task received.",
	}
	return nil
}

// Get returns a snapshot copy of the job, or false if it is absent.
func (s *Store) Get(jobID string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	return job, ok
}

// Transition carries the fields updated by a status change. Empty fields
// leave the stored value untouched.
type Transition struct {
	Status   Status
	Message  string
	Error    string
	ResultID string
}

// Transition applies a status change. A transition against an absent job is
// a logged no-op; that covers the rare race where the job was reaped while
// its executor was still running. The first transition into a terminal
// status stamps the job's expiry.
func (s *Store) Transition(jobID string, tr Transition) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		s.logger.Warn("transition for unknown job",
			slog.String("job_id", jobID),
			slog.String("status", string(tr.Status)),
		)
		return
	}

	job.Status = tr.Status
	if tr.Message != "" {
		job.Message = tr.Message
	}
	if tr.Error != "" {
		job.Error = tr.Error
	}
	if tr.ResultID != "" {
		job.ResultID = tr.ResultID
	}
	if tr.Status.Terminal() && job.ExpiresAt.IsZero() {
		job.ExpiresAt = s.now().Add(s.retention)
	}
	s.jobs[jobID] = job

	s.logger.Info("job transition",
		slog.String("job_id", jobID),
		slog.String("status", string(tr.Status)),
		slog.String("message", job.Message),
	)
}

// Delete removes a job. Deleting an absent job is a no-op.
func (s *Store) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

// DeleteByResult removes the job referencing resultID, unless that job is
// still processing: its executor may yet write to it. Reports whether a job
// was removed.
func (s *Store) DeleteByResult(resultID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, job := range s.jobs {
		if job.ResultID == resultID && job.Status != StatusProcessing {
			delete(s.jobs, id)
			return true
		}
	}
	return false
}

// SweepExpired removes every job whose expiry is stamped and has passed,
// returning the removed IDs.
func (s *Store) SweepExpired(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, job := range s.jobs {
		if !job.ExpiresAt.IsZero() && !job.ExpiresAt.After(now) {
			delete(s.jobs, id)
			removed = append(removed, id)
		}
	}
	return removed
}
