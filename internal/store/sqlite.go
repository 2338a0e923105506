// Package store persists finished matches to a local SQLite database so
// history and insights survive restarts.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"courtwatch/internal/classify"
	"courtwatch/internal/scoring"
	"courtwatch/internal/sport"
	"courtwatch/internal/workout"
)

// Schema for the match history store.
const schema = `
CREATE TABLE IF NOT EXISTS matches (
    id              TEXT PRIMARY KEY,
    sport           TEXT NOT NULL,
    kind            TEXT NOT NULL,
    started_ns      INTEGER NOT NULL,
    finished_ns     INTEGER NOT NULL,
    winner          TEXT NOT NULL DEFAULT '',
    sets_a          INTEGER NOT NULL DEFAULT 0,
    sets_b          INTEGER NOT NULL DEFAULT 0,
    games_a         INTEGER NOT NULL DEFAULT 0,
    games_b         INTEGER NOT NULL DEFAULT 0,
    points_a        INTEGER NOT NULL DEFAULT 0,
    points_b        INTEGER NOT NULL DEFAULT 0,
    avg_heart_rate  REAL,
    calories        REAL
);

CREATE INDEX IF NOT EXISTS idx_matches_started ON matches(started_ns);

CREATE TABLE IF NOT EXISTS set_scores (
    match_id    TEXT NOT NULL REFERENCES matches(id),
    ordinal     INTEGER NOT NULL,
    games_a     INTEGER NOT NULL,
    games_b     INTEGER NOT NULL,
    PRIMARY KEY (match_id, ordinal)
);

CREATE TABLE IF NOT EXISTS point_events (
    match_id        TEXT NOT NULL REFERENCES matches(id),
    ordinal         INTEGER NOT NULL,
    timestamp_ns    INTEGER NOT NULL,
    score_a         INTEGER NOT NULL,
    score_b         INTEGER NOT NULL,
    winner          TEXT NOT NULL DEFAULT '',
    on_serve        INTEGER NOT NULL DEFAULT 0,
    shot_type       TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (match_id, ordinal)
);
`

// Store represents the SQLite match history store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and applies
// the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InsertMatch persists a completed match record with its set scores and
// point events in one transaction.
func (s *Store) InsertMatch(r *Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var avgHR, calories sql.NullFloat64
	if r.Workout != nil {
		avgHR = sql.NullFloat64{Float64: r.Workout.AvgHeartRate, Valid: true}
		calories = sql.NullFloat64{Float64: r.Workout.Calories, Valid: true}
	}

	_, err = tx.Exec(`
		INSERT INTO matches (id, sport, kind, started_ns, finished_ns, winner,
			sets_a, sets_b, games_a, games_b, points_a, points_b,
			avg_heart_rate, calories)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.Sport), string(r.Kind),
		r.StartedAt.UnixNano(), r.FinishedAt.UnixNano(), string(r.Winner),
		r.Sets.A, r.Sets.B, r.Games.A, r.Games.B, r.Points.A, r.Points.B,
		avgHR, calories,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	setStmt, err := tx.Prepare(`
		INSERT INTO set_scores (match_id, ordinal, games_a, games_b)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare set scores: %w", err)
	}
	defer setStmt.Close()
	for i, set := range r.SetScores {
		if _, err := setStmt.Exec(r.ID, i, set.A, set.B); err != nil {
			return fmt.Errorf("insert set score: %w", err)
		}
	}

	evStmt, err := tx.Prepare(`
		INSERT INTO point_events (match_id, ordinal, timestamp_ns, score_a, score_b, winner, on_serve, shot_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare point events: %w", err)
	}
	defer evStmt.Close()
	for i, ev := range r.Events {
		onServe := 0
		if ev.OnServe {
			onServe = 1
		}
		if _, err := evStmt.Exec(r.ID, i, ev.Timestamp.UnixNano(),
			ev.Score.A, ev.Score.B, string(ev.Winner), onServe, string(ev.ShotType)); err != nil {
			return fmt.Errorf("insert point event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetMatch retrieves a full match record by ID, or nil when absent.
func (s *Store) GetMatch(id string) (*Record, error) {
	var r Record
	var sp, kind, winner string
	var startedNs, finishedNs int64
	var avgHR, calories sql.NullFloat64

	err := s.db.QueryRow(`
		SELECT id, sport, kind, started_ns, finished_ns, winner,
			sets_a, sets_b, games_a, games_b, points_a, points_b,
			avg_heart_rate, calories
		FROM matches WHERE id = ?`, id,
	).Scan(&r.ID, &sp, &kind, &startedNs, &finishedNs, &winner,
		&r.Sets.A, &r.Sets.B, &r.Games.A, &r.Games.B, &r.Points.A, &r.Points.B,
		&avgHR, &calories)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get match: %w", err)
	}

	r.Sport = sport.Sport(sp)
	r.Kind = sport.Kind(kind)
	r.Winner = scoring.Side(winner)
	r.StartedAt = time.Unix(0, startedNs)
	r.FinishedAt = time.Unix(0, finishedNs)
	if avgHR.Valid || calories.Valid {
		r.Workout = &workout.Summary{AvgHeartRate: avgHR.Float64, Calories: calories.Float64}
	}

	r.SetScores, err = s.getSetScores(id)
	if err != nil {
		return nil, err
	}
	r.Events, err = s.getPointEvents(id)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// ListMatches returns the most recent matches, newest first. A limit of
// zero or less returns everything.
func (s *Store) ListMatches(limit int) ([]Summary, error) {
	query := `
		SELECT id, sport, kind, started_ns, finished_ns, winner,
			sets_a, sets_b, games_a, games_b, points_a, points_b
		FROM matches
		ORDER BY started_ns DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var sp, kind, winner string
		var startedNs, finishedNs int64
		var sets, games, points scoring.Score
		if err := rows.Scan(&sum.ID, &sp, &kind, &startedNs, &finishedNs, &winner,
			&sets.A, &sets.B, &games.A, &games.B, &points.A, &points.B); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		sum.Sport = sport.Sport(sp)
		sum.Kind = sport.Kind(kind)
		sum.Winner = scoring.Side(winner)
		sum.StartedAt = time.Unix(0, startedNs)
		sum.FinishedAt = time.Unix(0, finishedNs)
		if sum.Sport == sport.Pickleball {
			sum.Scoreline = fmt.Sprintf("%d-%d", points.A, points.B)
		} else {
			sum.Scoreline = fmt.Sprintf("%d-%d", sets.A, sets.B)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return out, nil
}

func (s *Store) getSetScores(matchID string) ([]scoring.Score, error) {
	rows, err := s.db.Query(`
		SELECT games_a, games_b
		FROM set_scores
		WHERE match_id = ?
		ORDER BY ordinal ASC`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query set scores: %w", err)
	}
	defer rows.Close()

	var sets []scoring.Score
	for rows.Next() {
		var sc scoring.Score
		if err := rows.Scan(&sc.A, &sc.B); err != nil {
			return nil, fmt.Errorf("scan set score: %w", err)
		}
		sets = append(sets, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate set scores: %w", err)
	}
	return sets, nil
}

func (s *Store) getPointEvents(matchID string) ([]scoring.PointEvent, error) {
	rows, err := s.db.Query(`
		SELECT timestamp_ns, score_a, score_b, winner, on_serve, shot_type
		FROM point_events
		WHERE match_id = ?
		ORDER BY ordinal ASC`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query point events: %w", err)
	}
	defer rows.Close()

	var events []scoring.PointEvent
	for rows.Next() {
		var ev scoring.PointEvent
		var tsNs int64
		var winner, shotType string
		var onServe int
		if err := rows.Scan(&tsNs, &ev.Score.A, &ev.Score.B, &winner, &onServe, &shotType); err != nil {
			return nil, fmt.Errorf("scan point event: %w", err)
		}
		ev.Timestamp = time.Unix(0, tsNs)
		ev.Winner = scoring.Side(winner)
		ev.OnServe = onServe != 0
		ev.ShotType = classify.ShotType(shotType)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate point events: %w", err)
	}
	return events, nil
}
