package scoring

import (
	"fmt"
	"log/slog"
	"time"

	"courtwatch/internal/classify"
	"courtwatch/internal/clock"
	"courtwatch/internal/logging"
	"courtwatch/internal/motion"
	"courtwatch/internal/sport"
)

// undoDepth bounds the undo stack; the oldest snapshot drops beyond it.
const undoDepth = 10

// ShotResolver hands back the swing buffered for the current point, if one
// is still within its correlation window.
type ShotResolver interface {
	ResolvePoint(at time.Time) *motion.DetectedShot
}

// Engine drives one match. All mutations happen on the session goroutine;
// the engine itself takes no locks.
type Engine struct {
	cfg      MatchConfig
	rules    Rules
	clk      clock.Clock
	log      *slog.Logger
	resolver ShotResolver

	startedAt  time.Time
	finishedAt time.Time

	st     State
	events []PointEvent
	undo   []undoRecord
}

// undoRecord is one pre-mutation snapshot.
type undoRecord struct {
	state      State
	events     int // log length before the mutation
	finishedAt time.Time
}

// NewEngine creates an engine for the configured match. The resolver and
// logger may be nil; scoring never depends on shot correlation.
func NewEngine(cfg MatchConfig, resolver ShotResolver, clk clock.Clock, log *slog.Logger) (*Engine, error) {
	rules, err := rulesFor(cfg)
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = logging.Discard()
	}
	if cfg.FirstServer == SideNone {
		cfg.FirstServer = SideA
	}

	now := clk.Now()
	e := &Engine{
		cfg:       cfg,
		rules:     rules,
		clk:       clk,
		log:       log,
		resolver:  resolver,
		startedAt: now,
		st:        State{Server: cfg.FirstServer},
	}
	// The log always opens with a synthetic zero-score event.
	e.events = append(e.events, PointEvent{Timestamp: now})
	return e, nil
}

func rulesFor(cfg MatchConfig) (Rules, error) {
	switch cfg.Sport {
	case sport.Pickleball:
		return newPickleballRules(cfg), nil
	case sport.Tennis:
		return newTennisRules(cfg), nil
	case sport.Padel:
		return newPadelRules(cfg)
	default:
		return nil, fmt.Errorf("no scoring rules for sport %q", cfg.Sport)
	}
}

// RecordRally applies one rally won by the given side as a single atomic
// transition: resolve the buffered shot, snapshot for undo, apply the
// sport's rule, append the event, and settle win conditions.
func (e *Engine) RecordRally(winner Side) Outcome {
	if e.st.MatchWinner != SideNone {
		e.log.Warn("rally recorded after match end; ignored", "winner", winner)
		return Outcome{}
	}

	now := e.clk.Now()

	var shotType classify.ShotType
	var shot *motion.DetectedShot
	if e.resolver != nil {
		shot = e.resolver.ResolvePoint(now)
	}
	if shot != nil {
		shotType = shot.Type
	}

	e.pushUndo()

	onServe := winner == e.st.Server
	st, out := e.rules.ApplyRally(e.st, winner)
	e.st = st

	e.events = append(e.events, PointEvent{
		Timestamp: now,
		Score:     out.ScoreAfter,
		Winner:    winner,
		OnServe:   onServe,
		ShotType:  shotType,
	})

	if shot != nil && out.PointScored {
		shot.MarkScored()
	}

	if out.MatchWon != SideNone {
		e.finishedAt = now
		e.log.Info("match finished",
			"winner", out.MatchWon,
			"sets", e.st.Sets,
			"games", e.st.Games,
		)
	}
	return out
}

// Undo reverts the last rally. It restores all counters and serve state,
// removes the newest log event, and reopens the match if the rally had
// finished it. Undo on an empty history is a no-op.
func (e *Engine) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}

	rec := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]

	e.st = rec.state
	e.finishedAt = rec.finishedAt
	if rec.events >= 1 && rec.events <= len(e.events) {
		e.events = e.events[:rec.events]
	}
	return true
}

func (e *Engine) pushUndo() {
	rec := undoRecord{
		state:      e.st.clone(),
		events:     len(e.events),
		finishedAt: e.finishedAt,
	}
	e.undo = append(e.undo, rec)
	if len(e.undo) > undoDepth {
		e.undo = e.undo[1:]
	}
}

// State returns a copy of the current match position.
func (e *Engine) State() State {
	return e.st.clone()
}

// Config returns the match configuration.
func (e *Engine) Config() MatchConfig {
	return e.cfg
}

// Events returns a copy of the point-event log.
func (e *Engine) Events() []PointEvent {
	return append([]PointEvent(nil), e.events...)
}

// Finished reports whether the match has a winner.
func (e *Engine) Finished() bool {
	return e.st.MatchWinner != SideNone
}

// Winner returns the match winner, or SideNone while play continues.
func (e *Engine) Winner() Side {
	return e.st.MatchWinner
}

// StartedAt returns the match start time.
func (e *Engine) StartedAt() time.Time {
	return e.startedAt
}

// Elapsed returns the match duration; the clock stops when the match
// finishes and resumes if the finishing rally is undone.
func (e *Engine) Elapsed() time.Duration {
	end := e.finishedAt
	if end.IsZero() {
		end = e.clk.Now()
	}
	return end.Sub(e.startedAt)
}
