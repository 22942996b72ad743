package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// UploadPayload is the raw input handed over by the HTTP layer.
type UploadPayload struct {
	Audio    []byte
	Filename string
}

// StatusView is the caller-facing snapshot of a job. ResultID and ExpiresIn
// are populated only while the job is completed and its result fetchable.
type StatusView struct {
	Status    Status
	Message   string
	Error     string
	ResultID  string
	ExpiresIn int
}

// Service is the submission/query façade over the job store, result cache
// and executor. Submit never blocks on job completion.
type Service struct {
	jobs    *Store
	results *ResultCache
	exec    *Executor
	logger  *slog.Logger
}

// NewService creates the façade.
func NewService(jobs *Store, results *ResultCache, exec *Executor, logger *slog.Logger) *Service {
	return &Service{
		jobs:    jobs,
		results: results,
		exec:    exec,
		logger:  logger,
	}
}

// Submit registers a new pending job and spawns its executor. One goroutine
// per job, unbounded; a bounded pool with an admission queue is the known
// extension point if load ever warrants it.
func (s *Service) Submit(payload UploadPayload) (string, error) {
	jobID := uuid.New().String()
	if err := s.jobs.Create(jobID); err != nil {
		return "", err
	}

	go s.exec.Run(context.Background(), jobID, payload.Audio, payload.Filename)

	s.logger.Info("job submitted",
		slog.String("job_id", jobID),
		slog.String("filename", payload.Filename),
		slog.Int("size", len(payload.Audio)),
	)
	return jobID, nil
}

// Status reads the job and, for completed jobs, re-checks the result cache:
// a completed job whose result is gone is reported as expired. The
// reclassification happens here at query time; the stored record keeps its
// own clock.
func (s *Service) Status(jobID string) (StatusView, bool) {
	job, ok := s.jobs.Get(jobID)
	if !ok {
		return StatusView{}, false
	}

	view := StatusView{
		Status:  job.Status,
		Message: job.Message,
		Error:   job.Error,
	}
	if job.Status != StatusCompleted {
		return view, true
	}

	if job.ResultID == "" {
		// Should not happen; degrade to a queryable failure.
		view.Status = StatusFailed
		view.Error = "Internal error: completed without an associated result."
		return view, true
	}

	res, ok := s.results.Get(job.ResultID)
	if !ok {
		view.Status = StatusExpired
		view.Message = "The result has expired."
		return view, true
	}

	view.ResultID = job.ResultID
	remaining := time.Until(res.CreatedAt.Add(s.results.TTL()))
	if remaining < 0 {
		remaining = 0
	}
	view.ExpiresIn = int(remaining.Seconds())
	return view, true
}

// Fetch returns the cached artifact, honouring the cache's lazy expiry.
func (s *Service) Fetch(resultID string) (Result, bool) {
	return s.results.Get(resultID)
}
