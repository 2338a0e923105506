// Package workout wraps the on-device workout session service. Tracking is
// best-effort: starting is fire-and-forget, ending returns an optional
// summary, and nothing here can fail the scoring flow.
package workout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"courtwatch/internal/logging"
	"courtwatch/internal/sport"
)

// Summary is the health data attached to a finished match.
type Summary struct {
	AvgHeartRate float64 `json:"avg_heart_rate"` // bpm
	Calories     float64 `json:"calories"`       // kcal
}

// Backend is the platform workout service.
type Backend interface {
	// Begin starts a workout session. Best-effort; errors are logged only.
	Begin(ctx context.Context, sp sport.Sport, kind sport.Kind) error
	// Active reports whether a session is collecting data.
	Active() bool
	// Finish ends the session and returns its summary, or nil when the
	// session never became active.
	Finish(ctx context.Context) (*Summary, error)
}

const (
	// activationWait bounds how long EndTracking polls for the backend to
	// become active before giving up on a summary.
	activationWait = 2 * time.Second
	// activationPoll is the polling interval during the bounded wait.
	activationPoll = 100 * time.Millisecond
)

// Tracker manages workout tracking for matches and caches summaries per
// match ID so repeated end calls stay idempotent.
type Tracker struct {
	backend Backend
	log     *slog.Logger

	mu        sync.Mutex
	summaries map[string]*Summary
}

// NewTracker creates a tracker around the given backend. A nil backend
// disables tracking entirely; every match simply ends without a summary.
func NewTracker(backend Backend, log *slog.Logger) *Tracker {
	if log == nil {
		log = logging.Discard()
	}
	return &Tracker{
		backend:   backend,
		log:       log,
		summaries: make(map[string]*Summary),
	}
}

// StartTracking begins a workout session without blocking the caller.
// Failures are logged and otherwise ignored.
func (t *Tracker) StartTracking(sp sport.Sport, kind sport.Kind) {
	if t.backend == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := t.backend.Begin(ctx, sp, kind); err != nil {
			t.log.Warn("workout tracking failed to start", "error", err)
		}
	}()
}

// EndTracking finishes the workout session for a match and returns its
// summary, or nil when tracking never became active. Results are cached by
// match ID, so calling again after completion returns the same summary.
func (t *Tracker) EndTracking(ctx context.Context, matchID string) *Summary {
	t.mu.Lock()
	if s, ok := t.summaries[matchID]; ok {
		t.mu.Unlock()
		return s
	}
	t.mu.Unlock()

	if t.backend == nil {
		return nil
	}

	// The session may still be spinning up; wait a bounded interval for it.
	deadline := time.Now().Add(activationWait)
	for !t.backend.Active() {
		if time.Now().After(deadline) {
			t.log.Warn("workout tracking never became active", "match_id", matchID)
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(activationPoll):
		}
	}

	summary, err := t.backend.Finish(ctx)
	if err != nil {
		t.log.Warn("workout tracking failed to finish", "match_id", matchID, "error", err)
		return nil
	}

	t.mu.Lock()
	t.summaries[matchID] = summary
	t.mu.Unlock()
	return summary
}
