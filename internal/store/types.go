package store

import (
	"time"

	"courtwatch/internal/scoring"
	"courtwatch/internal/sport"
	"courtwatch/internal/workout"
)

// Record is a completed (or abandoned) match as persisted to history.
type Record struct {
	ID         string               `json:"id"`
	Sport      sport.Sport          `json:"sport"`
	Kind       sport.Kind           `json:"kind"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Winner     scoring.Side         `json:"winner,omitempty"`
	Sets       scoring.Score        `json:"sets"`
	Games      scoring.Score        `json:"games"`
	Points     scoring.Score        `json:"points"`
	SetScores  []scoring.Score      `json:"set_scores,omitempty"`
	Events     []scoring.PointEvent `json:"events"`
	Workout    *workout.Summary     `json:"workout,omitempty"`
}

// Summary is the lightweight listing row for match history.
type Summary struct {
	ID         string       `json:"id"`
	Sport      sport.Sport  `json:"sport"`
	Kind       sport.Kind   `json:"kind"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Winner     scoring.Side `json:"winner,omitempty"`
	Scoreline  string       `json:"scoreline"`
}
