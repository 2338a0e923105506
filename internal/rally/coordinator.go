// Package rally correlates detected swings with the scoring actions that
// follow them. The coordinator owns two independent expiring windows: a
// serve-expectation window armed when a serve is due, and a pending-point
// window holding at most one buffered shot awaiting a score entry.
package rally

import (
	"log/slog"
	"sync"
	"time"

	"courtwatch/internal/clock"
	"courtwatch/internal/logging"
	"courtwatch/internal/motion"
)

const (
	// DefaultServeWindow is how long a serve expectation stays armed.
	DefaultServeWindow = 3 * time.Second
	// DefaultPendingWindow is how long a swing may wait to be matched with
	// the point it produced.
	DefaultPendingWindow = 3 * time.Second
)

// Coordinator is the process-wide rally timing service. Switching the
// active match must Reset it so a swing from one match never resolves a
// point in the next.
type Coordinator struct {
	clk clock.Clock
	log *slog.Logger

	mu            sync.Mutex
	serveActive   bool
	serveTimer    *time.Timer
	pendingActive bool
	pendingTimer  *time.Timer
	buffered      *motion.DetectedShot
	bufferedUntil time.Time
}

// NewCoordinator creates a coordinator. A nil clock falls back to the
// system clock; a nil logger discards.
func NewCoordinator(clk clock.Clock, log *slog.Logger) *Coordinator {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Coordinator{clk: clk, log: log}
}

// ArmServeWindow marks a serve as expected for the given duration
// (DefaultServeWindow when zero). Re-arming restarts the timer.
func (c *Coordinator) ArmServeWindow(d time.Duration) {
	if d <= 0 {
		d = DefaultServeWindow
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.serveActive = true
	stopTimer(c.serveTimer)
	c.serveTimer = time.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.serveActive = false
	})
}

// ConsumePendingServe reports whether a serve window was armed and clears
// it. The arm timer is canceled; cancellation is idempotent.
func (c *Coordinator) ConsumePendingServe() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.serveActive {
		return false
	}
	c.serveActive = false
	stopTimer(c.serveTimer)
	c.serveTimer = nil
	return true
}

// RegisterSwing opens the pending-point window for every swing. When
// bufferForAssociation is set the shot is held (replacing any previous
// one) until ResolvePoint claims it or the window expires.
func (c *Coordinator) RegisterSwing(shot *motion.DetectedShot, bufferForAssociation bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pendingActive = true
	stopTimer(c.pendingTimer)
	c.pendingTimer = time.AfterFunc(DefaultPendingWindow, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.pendingActive = false
		if c.buffered != nil {
			c.log.Debug("buffered shot expired", "type", c.buffered.Type)
		}
		c.buffered = nil
		c.bufferedUntil = time.Time{}
	})

	if bufferForAssociation {
		c.buffered = shot
		c.bufferedUntil = c.clk.Now().Add(DefaultPendingWindow)
	}
}

// ResolvePoint is invoked exactly once per scoring action. It closes the
// pending-point window and returns the buffered shot when the action
// arrived before the shot's expiry. The buffered shot is single-use:
// whatever happens, it is cleared.
func (c *Coordinator) ResolvePoint(at time.Time) *motion.DetectedShot {
	c.mu.Lock()
	defer c.mu.Unlock()

	stopTimer(c.pendingTimer)
	c.pendingTimer = nil
	c.pendingActive = false

	shot := c.buffered
	expiry := c.bufferedUntil
	c.buffered = nil
	c.bufferedUntil = time.Time{}

	if shot == nil || at.After(expiry) {
		return nil
	}
	return shot
}

// WindowActive reports whether either window is open. The classifier uses
// this as its timing-context flag.
func (c *Coordinator) WindowActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serveActive || c.pendingActive
}

// ServeWindowActive reports whether a serve is currently expected.
func (c *Coordinator) ServeWindowActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serveActive
}

// Reset clears both windows and discards any buffered shot. Called when
// the active match changes.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	stopTimer(c.serveTimer)
	stopTimer(c.pendingTimer)
	c.serveTimer = nil
	c.pendingTimer = nil
	c.serveActive = false
	c.pendingActive = false
	c.buffered = nil
	c.bufferedUntil = time.Time{}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
