package workout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtwatch/internal/sport"
)

type fakeBackend struct {
	mu        sync.Mutex
	active    bool
	began     int
	finished  int
	summary   *Summary
	beginErr  error
	finishErr error
}

func (f *fakeBackend) Begin(ctx context.Context, sp sport.Sport, kind sport.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.began++
	if f.beginErr != nil {
		return f.beginErr
	}
	f.active = true
	return nil
}

func (f *fakeBackend) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeBackend) Finish(ctx context.Context) (*Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished++
	f.active = false
	return f.summary, f.finishErr
}

func TestNilBackendDisablesTracking(t *testing.T) {
	tr := NewTracker(nil, nil)
	tr.StartTracking(sport.Tennis, sport.Singles)
	assert.Nil(t, tr.EndTracking(context.Background(), "m1"))
}

func TestStartAndEndTracking(t *testing.T) {
	backend := &fakeBackend{summary: &Summary{AvgHeartRate: 132, Calories: 410}}
	tr := NewTracker(backend, nil)

	tr.StartTracking(sport.Pickleball, sport.Doubles)
	require.Eventually(t, backend.Active, time.Second, 10*time.Millisecond)

	got := tr.EndTracking(context.Background(), "m1")
	require.NotNil(t, got)
	assert.Equal(t, 132.0, got.AvgHeartRate)
	assert.Equal(t, 410.0, got.Calories)
}

func TestEndTrackingWaitsForActivation(t *testing.T) {
	backend := &fakeBackend{summary: &Summary{Calories: 100}}
	tr := NewTracker(backend, nil)

	// Activation lands while EndTracking is already polling.
	go func() {
		time.Sleep(150 * time.Millisecond)
		backend.mu.Lock()
		backend.active = true
		backend.mu.Unlock()
	}()

	got := tr.EndTracking(context.Background(), "m1")
	require.NotNil(t, got)
	assert.Equal(t, 100.0, got.Calories)
}

func TestEndTrackingIdempotentPerMatch(t *testing.T) {
	backend := &fakeBackend{summary: &Summary{Calories: 90}}
	tr := NewTracker(backend, nil)
	tr.StartTracking(sport.Padel, sport.Doubles)
	require.Eventually(t, backend.Active, time.Second, 10*time.Millisecond)

	first := tr.EndTracking(context.Background(), "m1")
	second := tr.EndTracking(context.Background(), "m1")
	assert.Same(t, first, second)

	backend.mu.Lock()
	finished := backend.finished
	backend.mu.Unlock()
	assert.Equal(t, 1, finished)
}

func TestEndTrackingCanceledContext(t *testing.T) {
	backend := &fakeBackend{} // never becomes active
	tr := NewTracker(backend, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	assert.Nil(t, tr.EndTracking(ctx, "m1"))
}

func TestBeginFailureIsSwallowed(t *testing.T) {
	backend := &fakeBackend{beginErr: errors.New("sensors offline")}
	tr := NewTracker(backend, nil)

	// Starting must not panic or block the caller.
	tr.StartTracking(sport.Tennis, sport.Singles)
	assert.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return backend.began == 1
	}, time.Second, 10*time.Millisecond)
}
