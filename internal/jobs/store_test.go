package jobs

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(time.Hour, testLogger())

	_, ok := store.Get("job-1")
	assert.False(t, ok, "job should be absent before create")

	require.NoError(t, store.Create("job-1"))

	job, ok := store.Get("job-1")
	require.True(t, ok)
	assert.Equal(t, StatusPending, job.Status)
	assert.Empty(t, job.Error)
	assert.Empty(t, job.ResultID)
	assert.True(t, job.ExpiresAt.IsZero())

	err := store.Create("job-1")
	assert.ErrorIs(t, err, ErrJobExists)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore(time.Hour, testLogger())
	require.NoError(t, store.Create("job-1"))

	job, ok := store.Get("job-1")
	require.True(t, ok)
	job.Status = StatusFailed
	job.Error = "mutated from outside"

	fresh, ok := store.Get("job-1")
	require.True(t, ok)
	assert.Equal(t, StatusPending, fresh.Status)
	assert.Empty(t, fresh.Error)
}

func TestStore_Transition(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		transitions []Transition
		wantStatus  Status
		wantMessage string
		wantError   string
		wantResult  string
		wantExpiry  time.Time
	}{
		{
			name: "processing keeps updating the message",
			transitions: []Transition{
				{Status: StatusProcessing, Message: "Starting transcription..."},
				{Status: StatusProcessing, Message: "Analyzing text..."},
			},
			wantStatus:  StatusProcessing,
			wantMessage: "Analyzing text...",
		},
		{
			name: "completed sets result reference and expiry, never error",
			transitions: []Transition{
				{Status: StatusProcessing, Message: "working"},
				{Status: StatusCompleted, Message: "done", ResultID: "res-1"},
			},
			wantStatus:  StatusCompleted,
			wantMessage: "done",
			wantResult:  "res-1",
			wantExpiry:  now.Add(time.Hour),
		},
		{
			name: "failed sets error and expiry, never result",
			transitions: []Transition{
				{Status: StatusFailed, Error: "Transcription failed: rate limited"},
			},
			wantStatus: StatusFailed,
			wantError:  "Transcription failed: rate limited",
			wantExpiry: now.Add(time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(time.Hour, testLogger())
			store.now = func() time.Time { return now }
			require.NoError(t, store.Create("job-1"))

			for _, tr := range tt.transitions {
				store.Transition("job-1", tr)
			}

			job, ok := store.Get("job-1")
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, job.Status)
			assert.Equal(t, tt.wantMessage, job.Message)
			assert.Equal(t, tt.wantError, job.Error)
			assert.Equal(t, tt.wantResult, job.ResultID)
			assert.Equal(t, tt.wantExpiry, job.ExpiresAt)
		})
	}
}

func TestStore_TransitionSetsExpiryOnce(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour, testLogger())
	store.now = func() time.Time { return now }
	require.NoError(t, store.Create("job-1"))

	store.Transition("job-1", Transition{Status: StatusCompleted, ResultID: "res-1"})

	// A later idempotent re-apply must not move the expiry.
	store.now = func() time.Time { return now.Add(30 * time.Minute) }
	store.Transition("job-1", Transition{Status: StatusCompleted, ResultID: "res-1"})

	job, ok := store.Get("job-1")
	require.True(t, ok)
	assert.Equal(t, now.Add(time.Hour), job.ExpiresAt)
}

func TestStore_TransitionUnknownJobIsNoop(t *testing.T) {
	store := NewStore(time.Hour, testLogger())

	assert.NotPanics(t, func() {
		store.Transition("ghost", Transition{Status: StatusCompleted, ResultID: "res-1"})
	})
	_, ok := store.Get("ghost")
	assert.False(t, ok)
}

func TestStore_DeleteIdempotent(t *testing.T) {
	store := NewStore(time.Hour, testLogger())
	require.NoError(t, store.Create("job-1"))

	store.Delete("job-1")
	store.Delete("job-1")

	_, ok := store.Get("job-1")
	assert.False(t, ok)
}

func TestStore_SweepExpired(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour, testLogger())
	store.now = func() time.Time { return now }

	require.NoError(t, store.Create("terminal-1"))
	require.NoError(t, store.Create("terminal-2"))
	require.NoError(t, store.Create("still-pending"))
	store.Transition("terminal-1", Transition{Status: StatusCompleted, ResultID: "res-1"})
	store.Transition("terminal-2", Transition{Status: StatusFailed, Error: "boom"})

	removed := store.SweepExpired(now.Add(time.Hour + time.Second))
	assert.ElementsMatch(t, []string{"terminal-1", "terminal-2"}, removed)

	// Pending jobs carry no expiry and are never swept.
	_, ok := store.Get("still-pending")
	assert.True(t, ok)

	assert.Empty(t, store.SweepExpired(now.Add(2*time.Hour)))
}

func TestStore_DeleteByResult(t *testing.T) {
	store := NewStore(time.Hour, testLogger())

	require.NoError(t, store.Create("done"))
	store.Transition("done", Transition{Status: StatusCompleted, ResultID: "res-done"})

	require.NoError(t, store.Create("busy"))
	store.Transition("busy", Transition{Status: StatusProcessing, Message: "working", ResultID: "res-busy"})

	assert.True(t, store.DeleteByResult("res-done"))
	_, ok := store.Get("done")
	assert.False(t, ok)

	// A processing job is never removed; its executor may still write to it.
	assert.False(t, store.DeleteByResult("res-busy"))
	_, ok = store.Get("busy")
	assert.True(t, ok)

	assert.False(t, store.DeleteByResult("res-unknown"))
}

func TestStore_ConcurrentTransitions(t *testing.T) {
	store := NewStore(time.Hour, testLogger())

	const jobCount = 16
	const updates = 200

	for i := range jobCount {
		require.NoError(t, store.Create(fmt.Sprintf("job-%d", i)))
	}

	var wg sync.WaitGroup
	for i := range jobCount {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("job-%d", i)
			for u := range updates {
				store.Transition(id, Transition{
					Status:  StatusProcessing,
					Message: fmt.Sprintf("job %d update %d", i, u),
				})
			}
			store.Transition(id, Transition{
				Status:   StatusCompleted,
				Message:  fmt.Sprintf("job %d done", i),
				ResultID: id,
			})
		}(i)
	}
	wg.Wait()

	// Each executor only ever mutated its own record.
	for i := range jobCount {
		id := fmt.Sprintf("job-%d", i)
		job, ok := store.Get(id)
		require.True(t, ok)
		assert.Equal(t, StatusCompleted, job.Status)
		assert.Equal(t, fmt.Sprintf("job %d done", i), job.Message)
		assert.Equal(t, id, job.ResultID)
	}
}
