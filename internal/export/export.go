// Package export renders stored matches as versioned JSON documents and
// validates each one against the embedded schema before it leaves the
// device.
package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"courtwatch/internal/insights"
	"courtwatch/internal/scoring"
	"courtwatch/internal/sport"
	"courtwatch/internal/store"
	"courtwatch/internal/workout"
)

//go:embed schema/match-record-v1.schema.json
var matchRecordSchema []byte

const schemaID = "match-record-v1.schema.json"

// Document is the exported form of a match record.
type Document struct {
	Version    int                  `json:"version"`
	ID         string               `json:"id"`
	Sport      sport.Sport          `json:"sport"`
	Kind       sport.Kind           `json:"kind"`
	StartedAt  string               `json:"started_at"`
	FinishedAt string               `json:"finished_at"`
	Winner     scoring.Side         `json:"winner"`
	Sets       scoring.Score        `json:"sets"`
	Games      scoring.Score        `json:"games"`
	Points     scoring.Score        `json:"points"`
	SetScores  []scoring.Score      `json:"set_scores,omitempty"`
	Events     []scoring.PointEvent `json:"events"`
	Workout    *workout.Summary     `json:"workout,omitempty"`
	Insights   *insights.Report     `json:"insights,omitempty"`
}

// Exporter validates and writes match documents.
type Exporter struct {
	schema *jsonschema.Schema
}

// New compiles the embedded schema.
func New() (*Exporter, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaID, bytes.NewReader(matchRecordSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaID)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Exporter{schema: schema}, nil
}

// Build assembles the export document for a record, including derived
// insights.
func Build(r *store.Record) *Document {
	return &Document{
		Version:    1,
		ID:         r.ID,
		Sport:      r.Sport,
		Kind:       r.Kind,
		StartedAt:  r.StartedAt.UTC().Format(time.RFC3339Nano),
		FinishedAt: r.FinishedAt.UTC().Format(time.RFC3339Nano),
		Winner:     r.Winner,
		Sets:       r.Sets,
		Games:      r.Games,
		Points:     r.Points,
		SetScores:  r.SetScores,
		Events:     r.Events,
		Workout:    r.Workout,
		Insights:   insights.Analyze(r.Events),
	}
}

// Write validates the document against the schema and writes it as
// indented JSON. Validation failure means a bug upstream; nothing is
// written in that case.
func (e *Exporter) Write(w io.Writer, doc *Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("reparse document: %w", err)
	}
	if err := e.schema.Validate(instance); err != nil {
		return fmt.Errorf("document failed schema validation: %w", err)
	}

	if _, err := w.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
