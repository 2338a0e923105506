// Package scoring implements the live match state machines: score and serve
// tracking, game/set/tiebreak/match progression, a bounded undo history,
// and the append-only point-event log.
//
// A shared Engine owns the transition sequence and the log; a per-sport
// Rules implementation owns the scoring thresholds and serve rotation.
package scoring

import (
	"time"

	"courtwatch/internal/classify"
	"courtwatch/internal/sport"
)

// Side identifies one of the two competing sides.
type Side string

const (
	// SideA is the near side (the wearer's side).
	SideA Side = "A"
	// SideB is the far side.
	SideB Side = "B"
	// SideNone marks the absence of a side, e.g. no match winner yet.
	SideNone Side = ""
)

// Other returns the opposing side.
func (s Side) Other() Side {
	switch s {
	case SideA:
		return SideB
	case SideB:
		return SideA
	}
	return SideNone
}

// Score is a pair of counts, one per side.
type Score struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Get returns the count for a side.
func (s Score) Get(side Side) int {
	if side == SideA {
		return s.A
	}
	return s.B
}

// Add returns the score with one added to the side's count.
func (s Score) Add(side Side) Score {
	if side == SideA {
		s.A++
	} else {
		s.B++
	}
	return s
}

// Lead returns the side's count minus the opponent's.
func (s Score) Lead(side Side) int {
	return s.Get(side) - s.Get(side.Other())
}

// Max returns the larger count.
func (s Score) Max() int {
	if s.A > s.B {
		return s.A
	}
	return s.B
}

// Tied reports whether both counts are equal.
func (s Score) Tied() bool {
	return s.A == s.B
}

// PointEvent is one immutable entry in the match log. The log always opens
// with a synthetic zero-score event and is ordered by timestamp.
type PointEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	Score     Score             `json:"score"`   // point score after the rally, before any game reset
	Winner    Side              `json:"winner"`  // empty on the synthetic opener
	OnServe   bool              `json:"on_serve"` // the winner was serving
	ShotType  classify.ShotType `json:"shot_type,omitempty"`
}

// MatchConfig describes a match's format.
type MatchConfig struct {
	Sport       sport.Sport `json:"sport"`
	Kind        sport.Kind  `json:"kind"`
	FirstServer Side        `json:"first_server"`

	// TargetScore is the rally-scoring game target (default 11).
	TargetScore int `json:"target_score,omitempty"`
	// WinByTwo extends a rally-scoring game until one side leads by two.
	WinByTwo bool `json:"win_by_two,omitempty"`

	// SetsToWin ends a set-based match when one side reaches it (default 2).
	SetsToWin int `json:"sets_to_win,omitempty"`
	// GoldenPoint makes the point after 3-all sudden death (padel).
	GoldenPoint bool `json:"golden_point,omitempty"`
}

// State is the complete mutable match position. It is snapshotted whole for
// undo, including the serve-rotation fields.
type State struct {
	Points Score `json:"points"`
	Games  Score `json:"games"`
	Sets   Score `json:"sets"`

	// CompletedSets records the game score of each finished set in order.
	CompletedSets []Score `json:"completed_sets,omitempty"`

	Server       Side `json:"server"`
	SecondServer bool `json:"second_server,omitempty"` // doubles rally scoring
	ServeSlot    int  `json:"serve_slot,omitempty"`    // traditional rotation position

	Tiebreak            bool `json:"tiebreak,omitempty"`
	TiebreakPlayed      int  `json:"tiebreak_played,omitempty"`
	TiebreakFirstServer Side `json:"tiebreak_first_server,omitempty"`

	MatchWinner Side `json:"match_winner,omitempty"`
}

// clone deep-copies the state for undo snapshots.
func (s State) clone() State {
	out := s
	out.CompletedSets = append([]Score(nil), s.CompletedSets...)
	return out
}

// Outcome summarizes what one rally changed.
type Outcome struct {
	PointScored     bool  `json:"point_scored"`
	ScoreAfter      Score `json:"score_after"`
	GameWon         Side  `json:"game_won,omitempty"`
	SetWon          Side  `json:"set_won,omitempty"`
	MatchWon        Side  `json:"match_won,omitempty"`
	TiebreakEntered bool  `json:"tiebreak_entered,omitempty"`
}

// Rules applies one rally to the match state. Implementations are pure:
// they never touch the log, the undo stack, or the clock.
type Rules interface {
	Sport() sport.Sport
	ApplyRally(st State, winner Side) (State, Outcome)
}
