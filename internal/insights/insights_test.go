package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtwatch/internal/classify"
	"courtwatch/internal/scoring"
)

func eventsFor(winners []scoring.Side, onServe []bool, shots []classify.ShotType) []scoring.PointEvent {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	events := []scoring.PointEvent{{Timestamp: base}}
	var running scoring.Score
	for i, w := range winners {
		running = running.Add(w)
		ev := scoring.PointEvent{
			Timestamp: base.Add(time.Duration(i+1) * time.Minute),
			Score:     running,
			Winner:    w,
		}
		if onServe != nil {
			ev.OnServe = onServe[i]
		}
		if shots != nil {
			ev.ShotType = shots[i]
		}
		events = append(events, ev)
	}
	return events
}

func TestAnalyzeEmptyLog(t *testing.T) {
	rep := Analyze(nil)
	assert.Zero(t, rep.TotalPoints)
	assert.Zero(t, rep.LeadChanges)
}

func TestAnalyzeSkipsSyntheticOpener(t *testing.T) {
	rep := Analyze(eventsFor([]scoring.Side{scoring.SideA}, nil, nil))
	assert.Equal(t, 1, rep.TotalPoints)
}

func TestLeadChanges(t *testing.T) {
	// A leads, B takes over, A takes it back: two lead changes. The ties
	// in between do not count.
	winners := []scoring.Side{
		scoring.SideA,                // 1-0, A leads
		scoring.SideB, scoring.SideB, // 1-2, B leads
		scoring.SideA, scoring.SideA, // 3-2, A leads
	}
	rep := Analyze(eventsFor(winners, nil, nil))
	assert.Equal(t, 2, rep.LeadChanges)
}

func TestLongestStreaks(t *testing.T) {
	winners := []scoring.Side{
		scoring.SideA, scoring.SideA, scoring.SideA,
		scoring.SideB,
		scoring.SideA, scoring.SideA,
		scoring.SideB, scoring.SideB,
	}
	rep := Analyze(eventsFor(winners, nil, nil))
	assert.Equal(t, 3, rep.LongestStreak[scoring.SideA])
	assert.Equal(t, 2, rep.LongestStreak[scoring.SideB])
}

func TestBiggestComeback(t *testing.T) {
	// B goes up by three, then A wins five straight to take the lead.
	winners := []scoring.Side{
		scoring.SideB, scoring.SideB, scoring.SideB,
		scoring.SideA, scoring.SideA, scoring.SideA, scoring.SideA, scoring.SideA,
	}
	rep := Analyze(eventsFor(winners, nil, nil))
	assert.Equal(t, 3, rep.BiggestComeback[scoring.SideA])
	assert.Zero(t, rep.BiggestComeback[scoring.SideB])
}

func TestNoComebackWithoutRetakingLead(t *testing.T) {
	winners := []scoring.Side{
		scoring.SideB, scoring.SideB, scoring.SideB,
		scoring.SideA, // digs in but never leads
	}
	rep := Analyze(eventsFor(winners, nil, nil))
	assert.Zero(t, rep.BiggestComeback[scoring.SideA])
}

func TestShotBreakdown(t *testing.T) {
	winners := []scoring.Side{scoring.SideA, scoring.SideA, scoring.SideB}
	shots := []classify.ShotType{classify.ShotServe, classify.ShotPower, ""}
	rep := Analyze(eventsFor(winners, nil, shots))

	assert.Equal(t, 1, rep.ShotBreakdown[classify.ShotServe])
	assert.Equal(t, 1, rep.ShotBreakdown[classify.ShotPower])
	// Points without an associated shot count as unknown.
	assert.Equal(t, 1, rep.ShotBreakdown[classify.ShotUnknown])
}

func TestServeWinRate(t *testing.T) {
	winners := []scoring.Side{scoring.SideA, scoring.SideA, scoring.SideB, scoring.SideB}
	// A won both of its points on serve; B won one of its two points while
	// A was serving (so A served three points total, winning two).
	onServe := []bool{true, true, false, true}
	rep := Analyze(eventsFor(winners, onServe, nil))

	require.Equal(t, 3, rep.ServePointsPlayed[scoring.SideA])
	assert.Equal(t, 2, rep.ServePointsWon[scoring.SideA])
	assert.InDelta(t, 2.0/3.0, rep.ServeWinRate(scoring.SideA), 1e-9)

	require.Equal(t, 1, rep.ServePointsPlayed[scoring.SideB])
	assert.InDelta(t, 1.0, rep.ServeWinRate(scoring.SideB), 1e-9)
}

func TestServeWinRateNoServes(t *testing.T) {
	rep := Analyze(nil)
	assert.Zero(t, rep.ServeWinRate(scoring.SideA))
}
