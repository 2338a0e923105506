// Package session runs live matches. A MatchSession owns one match end to
// end: it is the single goroutine that feeds motion samples through the
// pipeline and applies scoring commands, so engine state never needs a
// lock. The Manager owns the process-wide singletons shared across
// matches.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"courtwatch/internal/calibration"
	"courtwatch/internal/clock"
	"courtwatch/internal/imu"
	"courtwatch/internal/logging"
	"courtwatch/internal/motion"
	"courtwatch/internal/rally"
	"courtwatch/internal/scoring"
	"courtwatch/internal/store"
	"courtwatch/internal/workout"
)

// Status is a point-in-time snapshot of the running match.
type Status struct {
	MatchID   string              `json:"match_id"`
	Config    scoring.MatchConfig `json:"config"`
	State     scoring.State       `json:"state"`
	Scoreline string              `json:"scoreline"`
	Finished  bool                `json:"finished"`
	Winner    scoring.Side        `json:"winner,omitempty"`
	Elapsed   time.Duration       `json:"elapsed"`
	Shots     int                 `json:"shots"`
}

// MatchSession drives one match on a single goroutine.
type MatchSession struct {
	id       string
	engine   *scoring.Engine
	pipeline *motion.Pipeline
	coord    *rally.Coordinator
	tracker  *workout.Tracker
	clk      clock.Clock
	log      *slog.Logger

	samples  <-chan imu.Sample
	commands chan command
	done     chan struct{}

	shots int
}

type command struct {
	apply func(*MatchSession)
	done  chan struct{}
}

type sessionDeps struct {
	cfg         scoring.MatchConfig
	wornOnHand  bool
	calibration *calibration.Store
	coord       *rally.Coordinator
	tracker     *workout.Tracker
	clk         clock.Clock
	log         *slog.Logger
	samples     <-chan imu.Sample
}

func newMatchSession(d sessionDeps) (*MatchSession, error) {
	engine, err := scoring.NewEngine(d.cfg, d.coord, d.clk, d.log)
	if err != nil {
		return nil, err
	}

	s := &MatchSession{
		id:       uuid.NewString(),
		engine:   engine,
		coord:    d.coord,
		tracker:  d.tracker,
		clk:      d.clk,
		log:      d.log,
		samples:  d.samples,
		commands: make(chan command, 8),
		done:     make(chan struct{}),
	}
	s.pipeline = motion.NewPipeline(motion.Config{
		Sport:           d.cfg.Sport,
		WornOnSwingHand: d.wornOnHand,
		Calibration:     d.calibration,
		Timing:          d.coord,
		Recorder:        d.coord,
		Clock:           d.clk,
		Logger:          d.log,
	})
	return s, nil
}

// run is the session loop. It exits when the context is canceled; the
// sample channel closing only silences the sensor side.
func (s *MatchSession) run(ctx context.Context) {
	defer close(s.done)

	if s.tracker != nil {
		s.tracker.StartTracking(s.engine.Config().Sport, s.engine.Config().Kind)
	}
	// The opening serve is expected as soon as the match starts.
	s.coord.ArmServeWindow(0)

	samples := s.samples
	for {
		select {
		case <-ctx.Done():
			s.pipeline.Stop()
			return
		case sample, ok := <-samples:
			if !ok {
				samples = nil
				continue
			}
			if shot := s.pipeline.Process(sample); shot != nil {
				s.shots++
			}
		case cmd := <-s.commands:
			cmd.apply(s)
			close(cmd.done)
		}
	}
}

// exec runs fn on the session goroutine and waits for it.
func (s *MatchSession) exec(fn func(*MatchSession)) bool {
	cmd := command{apply: fn, done: make(chan struct{})}
	select {
	case s.commands <- cmd:
	case <-s.done:
		return false
	}
	select {
	case <-cmd.done:
		return true
	case <-s.done:
		return false
	}
}

// RecordRally scores one rally for the given side.
func (s *MatchSession) RecordRally(winner scoring.Side) (scoring.Outcome, bool) {
	var out scoring.Outcome
	ok := s.exec(func(ms *MatchSession) {
		out = ms.engine.RecordRally(winner)
		if !ms.engine.Finished() {
			// The next serve is due once the score is entered.
			ms.coord.ArmServeWindow(0)
		}
	})
	return out, ok
}

// Undo reverts the last rally.
func (s *MatchSession) Undo() bool {
	var undone bool
	s.exec(func(ms *MatchSession) {
		undone = ms.engine.Undo()
	})
	return undone
}

// Status returns a snapshot of the running match.
func (s *MatchSession) Status() Status {
	var st Status
	ok := s.exec(func(ms *MatchSession) {
		cfg := ms.engine.Config()
		state := ms.engine.State()
		st = Status{
			MatchID:   ms.id,
			Config:    cfg,
			State:     state,
			Scoreline: scoring.Scoreline(cfg, state),
			Finished:  ms.engine.Finished(),
			Winner:    ms.engine.Winner(),
			Elapsed:   ms.engine.Elapsed(),
			Shots:     ms.shots,
		}
	})
	if !ok {
		st.MatchID = s.id
	}
	return st
}

// ID returns the session's match ID.
func (s *MatchSession) ID() string {
	return s.id
}

// record builds the history record for the finished or abandoned match.
func (s *MatchSession) record(ctx context.Context) *store.Record {
	st := s.engine.State()
	rec := &store.Record{
		ID:         s.id,
		Sport:      s.engine.Config().Sport,
		Kind:       s.engine.Config().Kind,
		StartedAt:  s.engine.StartedAt(),
		FinishedAt: s.engine.StartedAt().Add(s.engine.Elapsed()),
		Winner:     s.engine.Winner(),
		Sets:       st.Sets,
		Games:      st.Games,
		Points:     st.Points,
		SetScores:  st.CompletedSets,
		Events:     s.engine.Events(),
	}
	if s.tracker != nil {
		rec.Workout = s.tracker.EndTracking(ctx, s.id)
	}
	return rec
}

func discardLogger(log *slog.Logger) *slog.Logger {
	if log == nil {
		return logging.Discard()
	}
	return log
}
