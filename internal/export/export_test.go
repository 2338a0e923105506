package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtwatch/internal/classify"
	"courtwatch/internal/scoring"
	"courtwatch/internal/sport"
	"courtwatch/internal/store"
	"courtwatch/internal/workout"
)

func sampleRecord() *store.Record {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return &store.Record{
		ID:         "match-1",
		Sport:      sport.Pickleball,
		Kind:       sport.Doubles,
		StartedAt:  start,
		FinishedAt: start.Add(20 * time.Minute),
		Winner:     scoring.SideA,
		Points:     scoring.Score{A: 11, B: 4},
		Events: []scoring.PointEvent{
			{Timestamp: start},
			{Timestamp: start.Add(time.Minute), Score: scoring.Score{A: 1}, Winner: scoring.SideA, OnServe: true, ShotType: classify.ShotServe},
		},
		Workout: &workout.Summary{AvgHeartRate: 120, Calories: 280},
	}
}

func TestBuildDocument(t *testing.T) {
	doc := Build(sampleRecord())

	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, "match-1", doc.ID)
	assert.Equal(t, "2026-08-01T10:00:00Z", doc.StartedAt)
	require.NotNil(t, doc.Insights)
	assert.Equal(t, 1, doc.Insights.TotalPoints)
}

func TestWriteValidDocument(t *testing.T) {
	exp, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exp.Write(&buf, Build(sampleRecord())))

	// The output round-trips as JSON with the expected top-level fields.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(1), decoded["version"])
	assert.Equal(t, "pickleball", decoded["sport"])
	assert.NotNil(t, decoded["events"])
	assert.NotNil(t, decoded["insights"])
}

func TestWriteRejectsInvalidDocument(t *testing.T) {
	exp, err := New()
	require.NoError(t, err)

	doc := Build(sampleRecord())
	doc.Sport = "cricket"

	var buf bytes.Buffer
	err = exp.Write(&buf, doc)
	assert.Error(t, err)
	assert.Zero(t, buf.Len(), "nothing is written on validation failure")
}

func TestWriteRejectsEmptyEvents(t *testing.T) {
	exp, err := New()
	require.NoError(t, err)

	rec := sampleRecord()
	rec.Events = nil
	doc := Build(rec)

	var buf bytes.Buffer
	assert.Error(t, exp.Write(&buf, doc))
}

func TestDocumentWithoutWorkout(t *testing.T) {
	exp, err := New()
	require.NoError(t, err)

	rec := sampleRecord()
	rec.Workout = nil

	var buf bytes.Buffer
	require.NoError(t, exp.Write(&buf, Build(rec)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	_, present := decoded["workout"]
	assert.False(t, present)
}
