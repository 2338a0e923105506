package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"courtwatch/internal/calibration"
	"courtwatch/internal/clock"
	"courtwatch/internal/imu"
	"courtwatch/internal/rally"
	"courtwatch/internal/scoring"
	"courtwatch/internal/store"
	"courtwatch/internal/workout"
)

// History is the persistence surface the manager needs; *store.Store
// satisfies it.
type History interface {
	InsertMatch(*store.Record) error
}

// Manager owns the process-wide collaborators (calibration, rally timing,
// workout tracking, history) and runs at most one match at a time.
type Manager struct {
	calibration *calibration.Store
	coord       *rally.Coordinator
	tracker     *workout.Tracker
	history     History
	clk         clock.Clock
	log         *slog.Logger

	wornOnHand bool

	mu      sync.Mutex
	active  *MatchSession
	cancel  context.CancelFunc
	samples <-chan imu.Sample
}

// ManagerConfig wires a manager.
type ManagerConfig struct {
	Calibration     *calibration.Store
	Coordinator     *rally.Coordinator
	Tracker         *workout.Tracker
	History         History
	Clock           clock.Clock
	Logger          *slog.Logger
	WornOnSwingHand bool
	// Samples is the shared motion-sample stream. May be nil; the match
	// then runs on manual score entry alone.
	Samples <-chan imu.Sample
}

// NewManager creates a manager. Calibration and the coordinator are
// created when absent so a zero-wiring manager still works.
func NewManager(cfg ManagerConfig) *Manager {
	log := discardLogger(cfg.Logger)
	clk := cfg.Clock
	if clk == nil {
		clk = clock.System{}
	}
	cal := cfg.Calibration
	if cal == nil {
		cal = calibration.NewStore()
	}
	coord := cfg.Coordinator
	if coord == nil {
		coord = rally.NewCoordinator(clk, log)
	}
	return &Manager{
		calibration: cal,
		coord:       coord,
		tracker:     cfg.Tracker,
		history:     cfg.History,
		clk:         clk,
		log:         log,
		wornOnHand:  cfg.WornOnSwingHand,
		samples:     cfg.Samples,
	}
}

// StartMatch ends any running match and starts a new one. The rally
// coordinator and calibration store are reset so a swing from the
// previous match can never resolve a point in the new one and one
// wearer's swings never calibrate another's.
func (m *Manager) StartMatch(ctx context.Context, cfg scoring.MatchConfig) (*MatchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		m.endLocked(ctx)
	}
	m.coord.Reset()
	m.calibration.Reset()

	s, err := newMatchSession(sessionDeps{
		cfg:         cfg,
		wornOnHand:  m.wornOnHand,
		calibration: m.calibration,
		coord:       m.coord,
		tracker:     m.tracker,
		clk:         m.clk,
		log:         m.log,
		samples:     m.samples,
	})
	if err != nil {
		return nil, fmt.Errorf("start match: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.active = s
	m.cancel = cancel
	go s.run(runCtx)

	m.log.Info("match started",
		"match_id", s.id,
		"sport", cfg.Sport,
		"kind", cfg.Kind,
	)
	return s, nil
}

// Active returns the running session, or nil.
func (m *Manager) Active() *MatchSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// EndMatch stops the running match, persists it, and returns its record.
// Ending with no active match returns nil.
func (m *Manager) EndMatch(ctx context.Context) *store.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endLocked(ctx)
}

func (m *Manager) endLocked(ctx context.Context) *store.Record {
	s := m.active
	if s == nil {
		return nil
	}
	m.cancel()
	<-s.done
	m.active = nil
	m.cancel = nil
	m.coord.Reset()
	m.calibration.Reset()

	rec := s.record(ctx)
	if m.history != nil {
		if err := m.history.InsertMatch(rec); err != nil {
			m.log.Error("failed to persist match", "match_id", rec.ID, "error", err)
		}
	}
	m.log.Info("match ended",
		"match_id", rec.ID,
		"winner", rec.Winner,
		"points", fmt.Sprintf("%d-%d", rec.Points.A, rec.Points.B),
	)
	return rec
}
