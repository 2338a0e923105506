// Package motion turns the periodic motion-sample stream into classified
// shots. A pipeline detects swing onset, accumulates rotation through the
// swing, classifies at the impact peak, debounces near-duplicates, and
// retains a bounded buffer of recent shots.
package motion

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"courtwatch/internal/calibration"
	"courtwatch/internal/classify"
	"courtwatch/internal/clock"
	"courtwatch/internal/imu"
	"courtwatch/internal/logging"
	"courtwatch/internal/sport"
)

const (
	// onsetFraction of the minimum swing threshold starts a swing window.
	onsetFraction = 0.5
	// peakFraction of the observed peak must be reached again before the
	// swing classifies; this lands on the impact rather than the attack.
	peakFraction = 0.85
	// decayTimeout discards a swing that stays below onset this long.
	decayTimeout = 500 * time.Millisecond
	// debounceInterval suppresses classification after a classified shot
	// so one stroke never counts twice.
	debounceInterval = 300 * time.Millisecond
	// recentShotCap bounds the recent-shots ring.
	recentShotCap = 20
)

// TimingContext reports whether a serve or rally-continuation window is
// open; the classifier uses it to rescue borderline swings. A classified
// serve consumes the serve window so follow-up swings in the same rally
// are not read as serves.
type TimingContext interface {
	WindowActive() bool
	ConsumePendingServe() bool
}

// Recorder receives classified shots for point correlation.
type Recorder interface {
	RegisterSwing(shot *DetectedShot, bufferForAssociation bool)
}

// Config configures a motion pipeline.
type Config struct {
	Sport           sport.Sport
	WornOnSwingHand bool
	Calibration     *calibration.Store
	Timing          TimingContext
	Recorder        Recorder
	Clock           clock.Clock
	Logger          *slog.Logger
}

// Pipeline consumes motion samples and produces detected shots. All calls
// to Process happen on the session goroutine; accessors take the lock so
// other goroutines may inspect recent shots.
type Pipeline struct {
	cfg Config
	clk clock.Clock
	log *slog.Logger

	mu      sync.Mutex
	state   swingState
	swing   swingWindow
	ring    *shotRing
	lastHit time.Time // last classified shot, for debounce and spacing
}

type swingState int

const (
	stateIdle swingState = iota
	stateSwinging
)

// swingWindow accumulates one swing between onset and classification.
type swingWindow struct {
	start      time.Time
	lastAbove  time.Time
	peak       float64
	sumPitch   float64
	sumHoriz   float64
	samples    int
	peakSample imu.Sample
}

// NewPipeline creates a motion pipeline.
func NewPipeline(cfg Config) *Pipeline {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.System{}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Pipeline{
		cfg:  cfg,
		clk:  clk,
		log:  log,
		ring: newShotRing(recentShotCap),
	}
}

// Process consumes one motion sample. It never blocks; classification and
// state mutation complete well within one sampling interval.
func (p *Pipeline) Process(sample imu.Sample) *DetectedShot {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := sample.Timestamp
	if now.IsZero() {
		now = p.clk.Now()
	}

	if !p.lastHit.IsZero() && now.Sub(p.lastHit) < debounceInterval {
		return nil
	}

	mag := sample.Magnitude()
	onset := p.onsetThreshold()

	switch p.state {
	case stateIdle:
		if mag > onset {
			p.state = stateSwinging
			p.swing = swingWindow{start: now, lastAbove: now, peak: mag, peakSample: sample}
			p.accumulate(sample)
		}
		return nil

	case stateSwinging:
		p.accumulate(sample)
		if mag > p.swing.peak {
			p.swing.peak = mag
			p.swing.peakSample = sample
		}
		if mag > onset {
			p.swing.lastAbove = now
		} else if now.Sub(p.swing.lastAbove) >= decayTimeout {
			// The swing decayed without a classifiable impact.
			p.state = stateIdle
			return nil
		}

		if mag >= p.minSwingThreshold() && mag >= peakFraction*p.swing.peak {
			return p.classifyLocked(now)
		}
		return nil
	}
	return nil
}

// Stop flushes any in-flight swing window. Calibration state stays
// consistent; the partial swing is simply discarded.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateSwinging {
		p.log.Debug("discarding in-flight swing on stop")
	}
	p.state = stateIdle
	p.swing = swingWindow{}
}

// RecentShots returns the buffered shots, most recent first.
func (p *Pipeline) RecentShots() []*DetectedShot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ring.recent()
}

// Reset clears the recent-shots buffer and any in-flight swing.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = stateIdle
	p.swing = swingWindow{}
	p.ring.clear()
	p.lastHit = time.Time{}
}

func (p *Pipeline) accumulate(sample imu.Sample) {
	rot := sample.Rotation
	p.swing.sumPitch += math.Abs(rot.X)
	p.swing.sumHoriz += math.Sqrt(rot.Y*rot.Y + rot.Z*rot.Z)
	p.swing.samples++
}

func (p *Pipeline) classifyLocked(now time.Time) *DetectedShot {
	duration := now.Sub(p.swing.start)
	angle := p.gyroAngle()

	timingActive := p.cfg.Timing != nil && p.cfg.Timing.WindowActive()
	cal := p.cfg.Calibration.State(p.cfg.Sport)

	result := classify.Classify(classify.Input{
		Sample:          p.swing.peakSample,
		Magnitude:       p.swing.peak,
		GyroAngle:       angle,
		Duration:        duration,
		Sport:           p.cfg.Sport,
		WornOnSwingHand: p.cfg.WornOnSwingHand,
		TimingActive:    timingActive,
	}, cal)

	var sincePrev time.Duration
	if !p.lastHit.IsZero() {
		sincePrev = now.Sub(p.lastHit)
	}

	shot := &DetectedShot{
		ID:             newShotID(),
		Type:           result.Type,
		Intensity:      cal.Normalize(p.swing.peak),
		Magnitude:      p.swing.peak,
		Timestamp:      now,
		GyroAngle:      angle,
		Duration:       duration,
		Sport:          p.cfg.Sport,
		SincePrevious:  sincePrev,
		Backhand:       result.Backhand,
		PointCandidate: result.Type.PointCandidate(),
	}

	peakRoll := p.swing.peakSample.Rotation.X

	p.ring.push(shot)
	p.lastHit = now
	p.state = stateIdle
	p.swing = swingWindow{}

	// Magnitude always feeds normalization; rotation only learns from
	// shot types that carry a handedness signal.
	p.cfg.Calibration.RecordMagnitude(p.cfg.Sport, shot.Magnitude)
	if result.Type != classify.ShotServe && result.Type != classify.ShotOverhead {
		p.cfg.Calibration.RecordRotation(p.cfg.Sport, peakRoll, result.Backhand, result.Confidence)
	}

	if result.Type == classify.ShotServe && p.cfg.Timing != nil {
		// The awaited serve arrived; close its window.
		p.cfg.Timing.ConsumePendingServe()
	}

	if p.cfg.Recorder != nil {
		buffer := result.Type == classify.ShotServe || result.Type == classify.ShotOverhead
		p.cfg.Recorder.RegisterSwing(shot, buffer)
	}

	p.log.Debug("shot classified",
		"type", shot.Type,
		"magnitude", shot.Magnitude,
		"intensity", shot.Intensity,
		"backhand", shot.Backhand,
		"duration_ms", duration.Milliseconds(),
	)
	return shot
}

// gyroAngle derives the swing-plane angle from the accumulated rotation
// sums in a single pass: the arctangent of average pitch over average
// horizontal rotation.
func (p *Pipeline) gyroAngle() float64 {
	if p.swing.samples == 0 {
		return 0
	}
	n := float64(p.swing.samples)
	return math.Atan2(p.swing.sumPitch/n, p.swing.sumHoriz/n) * 180 / math.Pi
}

func (p *Pipeline) minSwingThreshold() float64 {
	t := classify.ProfileFor(p.cfg.Sport).MinSwing
	if !p.cfg.WornOnSwingHand {
		t *= 0.8
	}
	return t
}

func (p *Pipeline) onsetThreshold() float64 {
	return onsetFraction * p.minSwingThreshold()
}
