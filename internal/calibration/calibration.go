// Package calibration maintains per-sport adaptive calibration derived from
// recent swings: a rolling magnitude history used to normalize shot
// intensity, and rolling forehand/backhand rotation histories used to adapt
// the backhand decision threshold to the wearer.
//
// State is a value type updated by pure functions. The Store swaps whole
// snapshots atomically so the sampling loop never takes a lock.
package calibration

import (
	"math"
	"sort"
	"sync/atomic"

	"courtwatch/internal/sport"
)

const (
	// magnitudeWindow caps the rolling magnitude history per sport.
	magnitudeWindow = 200
	// rotationWindow caps each rolling rotation history per sport.
	rotationWindow = 100

	// MinLearnConfidence gates adaptive learning. Shots classified below
	// this confidence never update rotation histories, which keeps noisy
	// classifications from dragging the threshold toward themselves.
	MinLearnConfidence = 0.6

	// Defaults used until enough samples accumulate.
	defaultMinMagnitude     = 1.0
	defaultMaxMagnitude     = 8.0
	defaultBackhandRotation = -1.8

	// minMagnitudeSamples is the history size required before percentile
	// normalization replaces the defaults.
	minMagnitudeSamples = 20
	// minRotationSamples is the per-class history size required before the
	// backhand threshold adapts.
	minRotationSamples = 10

	// twoHandedRollCeiling marks the mean absolute backhand roll below
	// which the wearer is assumed to hit two-handed backhands; a two-handed
	// stroke produces far less forearm roll than a one-handed one.
	twoHandedRollCeiling = 1.2

	// Adaptive threshold clamp range (rad/s, negative = backhand roll).
	backhandThresholdFloor   = -3.5
	backhandThresholdCeiling = -0.8
)

// State holds the calibration history for one sport.
type State struct {
	Magnitudes        []float64 `json:"magnitudes"`
	ForehandRotations []float64 `json:"forehand_rotations"`
	BackhandRotations []float64 `json:"backhand_rotations"`
}

// RecordMagnitude returns a new State with m appended to the magnitude
// history, dropping the oldest entry beyond the window cap.
func (s State) RecordMagnitude(m float64) State {
	s.Magnitudes = appendBounded(s.Magnitudes, m, magnitudeWindow)
	return s
}

// RecordRotation returns a new State with the forearm-roll value appended to
// the matching rotation history. Low-confidence observations are dropped.
func (s State) RecordRotation(roll float64, backhand bool, confidence float64) State {
	if confidence < MinLearnConfidence {
		return s
	}
	if backhand {
		s.BackhandRotations = appendBounded(s.BackhandRotations, roll, rotationWindow)
	} else {
		s.ForehandRotations = appendBounded(s.ForehandRotations, roll, rotationWindow)
	}
	return s
}

// Normalize maps a raw swing magnitude onto [0, 1] using the 10th and 90th
// percentiles of the rolling history as the wearer's personal range.
func (s State) Normalize(m float64) float64 {
	lo, hi := defaultMinMagnitude, defaultMaxMagnitude
	if len(s.Magnitudes) >= minMagnitudeSamples {
		lo = percentile(s.Magnitudes, 0.10)
		hi = percentile(s.Magnitudes, 0.90)
	}
	if hi-lo < 1e-9 {
		return 0.5
	}
	n := (m - lo) / (hi - lo)
	return math.Min(1, math.Max(0, n))
}

// BackhandThreshold returns the adaptive forearm-roll threshold below which
// a swing reads as a backhand. It sits midway between the wearer's observed
// forehand and backhand roll means once both histories are populated.
func (s State) BackhandThreshold() float64 {
	t := defaultBackhandRotation
	if len(s.BackhandRotations) >= minRotationSamples && len(s.ForehandRotations) >= minRotationSamples {
		t = (mean(s.BackhandRotations) + mean(s.ForehandRotations)) / 2
		t = math.Min(backhandThresholdCeiling, math.Max(backhandThresholdFloor, t))
	}
	if s.TwoHandedBackhand() {
		// A two-handed backhand rolls the forearm less, so the decision
		// threshold moves closer to zero.
		t *= 0.75
	}
	return t
}

// TwoHandedBackhand reports whether the rotation history suggests the wearer
// prefers two-handed backhands.
func (s State) TwoHandedBackhand() bool {
	if len(s.BackhandRotations) < minRotationSamples {
		return false
	}
	return meanAbs(s.BackhandRotations) < twoHandedRollCeiling
}

// Store holds calibration state for every sport and is shared process-wide.
// All reads and writes go through an atomic snapshot swap; writes come from
// the single pipeline goroutine.
type Store struct {
	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	states map[sport.Sport]State
}

// NewStore returns an empty calibration store.
func NewStore() *Store {
	st := &Store{}
	st.snap.Store(emptySnapshot())
	return st
}

func emptySnapshot() *snapshot {
	states := make(map[sport.Sport]State, len(sport.All()))
	for _, sp := range sport.All() {
		states[sp] = State{}
	}
	return &snapshot{states: states}
}

// State returns the current calibration state for the sport.
func (st *Store) State(sp sport.Sport) State {
	return st.snap.Load().states[sp]
}

// RecordMagnitude appends a raw swing magnitude to the sport's history.
func (st *Store) RecordMagnitude(sp sport.Sport, m float64) {
	st.update(sp, func(s State) State { return s.RecordMagnitude(m) })
}

// RecordRotation appends a forearm-roll observation for the sport. Shots
// below the learning confidence gate are ignored.
func (st *Store) RecordRotation(sp sport.Sport, roll float64, backhand bool, confidence float64) {
	st.update(sp, func(s State) State { return s.RecordRotation(roll, backhand, confidence) })
}

// Normalize maps a raw magnitude to the wearer's [0, 1] intensity range.
func (st *Store) Normalize(sp sport.Sport, m float64) float64 {
	return st.State(sp).Normalize(m)
}

// Reset discards all calibration state. Called when the active match
// changes so one wearer's swings never calibrate another's.
func (st *Store) Reset() {
	st.snap.Store(emptySnapshot())
}

func (st *Store) update(sp sport.Sport, fn func(State) State) {
	old := st.snap.Load()
	states := make(map[sport.Sport]State, len(old.states))
	for k, v := range old.states {
		states[k] = v
	}
	states[sp] = fn(states[sp])
	st.snap.Store(&snapshot{states: states})
}

func appendBounded(xs []float64, v float64, limit int) []float64 {
	out := make([]float64, 0, len(xs)+1)
	out = append(out, xs...)
	out = append(out, v)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func percentile(xs []float64, p float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func meanAbs(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += math.Abs(x)
	}
	return sum / float64(len(xs))
}
