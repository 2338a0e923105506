// Package insights derives post-match statistics from the point-event log.
// Everything here is computed from the immutable log alone, so insights for
// stored matches stay reproducible.
package insights

import (
	"courtwatch/internal/classify"
	"courtwatch/internal/scoring"
)

// Streak is a run of consecutive points won by one side.
type Streak struct {
	Side   scoring.Side `json:"side"`
	Length int          `json:"length"`
}

// Report is the full set of derived match statistics.
type Report struct {
	TotalPoints int `json:"total_points"`

	// LeadChanges counts transitions of the point-differential sign.
	LeadChanges int `json:"lead_changes"`

	// LongestStreak is the longest run per side.
	LongestStreak map[scoring.Side]int `json:"longest_streak"`

	// BiggestComeback is the largest deficit the eventual leader at any
	// moment had previously faced, per side.
	BiggestComeback map[scoring.Side]int `json:"biggest_comeback"`

	// ShotBreakdown counts points by the shot type that won them. Points
	// without an associated shot fall under the unknown type.
	ShotBreakdown map[classify.ShotType]int `json:"shot_breakdown"`

	// ServePointsWon and ServePointsPlayed track rally outcomes while each
	// side was serving.
	ServePointsWon    map[scoring.Side]int `json:"serve_points_won"`
	ServePointsPlayed map[scoring.Side]int `json:"serve_points_played"`
}

// ServeWinRate returns the fraction of serving points a side won, or zero
// when it never served.
func (r *Report) ServeWinRate(side scoring.Side) float64 {
	played := r.ServePointsPlayed[side]
	if played == 0 {
		return 0
	}
	return float64(r.ServePointsWon[side]) / float64(played)
}

// Analyze walks the point-event log and derives the report. The synthetic
// opening event (no winner) seeds the deficits and is otherwise skipped.
func Analyze(events []scoring.PointEvent) *Report {
	rep := &Report{
		LongestStreak:     map[scoring.Side]int{scoring.SideA: 0, scoring.SideB: 0},
		BiggestComeback:   map[scoring.Side]int{scoring.SideA: 0, scoring.SideB: 0},
		ShotBreakdown:     make(map[classify.ShotType]int),
		ServePointsWon:    map[scoring.Side]int{scoring.SideA: 0, scoring.SideB: 0},
		ServePointsPlayed: map[scoring.Side]int{scoring.SideA: 0, scoring.SideB: 0},
	}

	var (
		prevSign     int // sign of A-B differential at the last scored point
		streakSide   scoring.Side
		streakLen    int
		worstDeficit = map[scoring.Side]int{scoring.SideA: 0, scoring.SideB: 0}
		running      scoring.Score
	)

	for _, ev := range events {
		if ev.Winner == scoring.SideNone {
			continue
		}
		rep.TotalPoints++

		// The logged score resets at game boundaries, so lead tracking uses
		// a running whole-match tally instead.
		running = running.Add(ev.Winner)
		diff := running.A - running.B
		sign := 0
		if diff > 0 {
			sign = 1
		} else if diff < 0 {
			sign = -1
		}
		if sign != 0 && prevSign != 0 && sign != prevSign {
			rep.LeadChanges++
		}
		if sign != 0 {
			prevSign = sign
		}

		// Track the worst deficit each side has faced so far; winning a
		// point while the other side leads deepens nothing, but taking the
		// lead back converts the stored deficit into a comeback.
		for _, side := range []scoring.Side{scoring.SideA, scoring.SideB} {
			if d := -running.Lead(side); d > worstDeficit[side] {
				worstDeficit[side] = d
			}
			if running.Lead(side) > 0 && worstDeficit[side] > rep.BiggestComeback[side] {
				rep.BiggestComeback[side] = worstDeficit[side]
			}
		}

		if ev.Winner == streakSide {
			streakLen++
		} else {
			streakSide = ev.Winner
			streakLen = 1
		}
		if streakLen > rep.LongestStreak[streakSide] {
			rep.LongestStreak[streakSide] = streakLen
		}

		shot := ev.ShotType
		if shot == "" {
			shot = classify.ShotUnknown
		}
		rep.ShotBreakdown[shot]++

		server := ev.Winner
		if !ev.OnServe {
			server = ev.Winner.Other()
		}
		rep.ServePointsPlayed[server]++
		if ev.OnServe {
			rep.ServePointsWon[server]++
		}
	}

	return rep
}
