package jobs

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a submitted analysis job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"

	// StatusExpired is never stored. It is reported by Service.Status when a
	// completed job's result has already left the cache.
	StatusExpired Status = "expired"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one submitted unit of work. Error is set iff the job failed,
// ResultID is set iff it completed, and ExpiresAt is zero until the job
// reaches a terminal status.
type Job struct {
	ID        string
	Status    Status
	Message   string
	Error     string
	ResultID  string
	ExpiresAt time.Time
}

// ErrJobExists is returned when creating a job whose ID is already taken.
var ErrJobExists = errors.New("job already exists")
