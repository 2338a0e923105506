// Package classify turns a swing-peak motion sample into a shot type and
// handedness tag. Classification is a pure decision cascade over sport
// thresholds and the current calibration state; identical inputs always
// produce identical outputs.
package classify

import (
	"math"
	"time"

	"courtwatch/internal/calibration"
	"courtwatch/internal/imu"
	"courtwatch/internal/sport"
)

// ShotType is the classified stroke kind.
type ShotType string

const (
	ShotServe    ShotType = "serve"
	ShotOverhead ShotType = "overhead"
	ShotPower    ShotType = "power"
	ShotTouch    ShotType = "touch"
	ShotVolley   ShotType = "volley"
	ShotUnknown  ShotType = "unknown"
)

// PointCandidate reports whether this shot type tends to start a
// deterministic point outcome and is worth correlating with scoring.
func (t ShotType) PointCandidate() bool {
	return t == ShotServe || t == ShotOverhead || t == ShotPower
}

const (
	// fullSwingDuration separates reactive blocks from full groundstrokes.
	fullSwingDuration = 150 * time.Millisecond

	// offHandScale shrinks the minimum swing threshold when the watch is
	// worn on the non-swinging wrist, where impacts arrive attenuated.
	offHandScale = 0.8

	// Rotation-magnitude bands used by the cascade.
	lowRotation      = 1.5
	moderateRotation = 2.0
	elevatedRotation = 3.0
	highRotation     = 4.0

	// Vertical-acceleration signatures.
	serveVerticalMin = 1.0  // strongly upward: ball toss and reach
	smashVerticalMax = -1.0 // strongly downward: overhead smash

	// Backhand signal tuning.
	forehandShortCircuit = 2.0 // strongly positive roll is always a forehand
	rollFloorFull        = 1.8 // min rotation magnitude for a reliable roll read
	rollFloorQuick       = 1.0 // quick volleys roll less, so the floor drops
)

// Input is everything the classifier needs for one swing.
type Input struct {
	// Sample is the motion sample captured at the swing peak.
	Sample imu.Sample

	// Magnitude is the swing's peak acceleration magnitude.
	Magnitude float64

	// GyroAngle is the averaged swing-plane angle in degrees, as computed
	// by the motion pipeline.
	GyroAngle float64

	// Duration is the accumulated swing duration.
	Duration time.Duration

	// Sport selects the threshold profile.
	Sport sport.Sport

	// WornOnSwingHand is true when the watch rides the racket wrist.
	WornOnSwingHand bool

	// TimingActive is true while a serve or rally-continuation window is
	// open; it rescues borderline swings from the noise gate.
	TimingActive bool
}

// Result is the classification outcome.
type Result struct {
	Type     ShotType
	Backhand bool
	// Confidence gates adaptive learning; it is not surfaced to scoring.
	Confidence float64
}

// Classify runs the decision cascade for one swing.
func Classify(in Input, cal calibration.State) Result {
	p := ProfileFor(in.Sport)

	minSwing := p.MinSwing
	if !in.WornOnSwingHand {
		minSwing *= offHandScale
	}

	rotMag := in.Sample.Rotation.Magnitude()
	roll := in.Sample.Rotation.X
	vertical := in.Sample.Acceleration.Y

	backhand, confidence := backhandSignal(roll, rotMag, in.Duration, in.Magnitude, minSwing, cal)

	typ := shotType(in, p, minSwing, rotMag, vertical)
	if typ == ShotServe {
		// A serve has no forehand/backhand identity.
		backhand = false
	}

	return Result{Type: typ, Backhand: backhand, Confidence: confidence}
}

// shotType is the ordered cascade; the first matching rule wins.
func shotType(in Input, p Profile, minSwing, rotMag, vertical float64) ShotType {
	// Noise gate: a weak swing with no timing context is not a shot.
	if in.Magnitude < minSwing && !in.TimingActive {
		return ShotUnknown
	}

	// Serve: expected serve with a strong upward component, or an
	// unambiguous vertical spike with elevated rotation.
	if in.TimingActive && in.Magnitude > 0.8*p.Serve && vertical > serveVerticalMin {
		return ShotServe
	}
	if vertical > p.Serve && rotMag > elevatedRotation {
		return ShotServe
	}

	// Touch: soft contact at or below the sport's dink ceiling.
	if in.Magnitude <= p.Touch {
		return ShotTouch
	}

	// Overhead: steep swing plane with high rotation, or the downward
	// smash signature.
	if (in.GyroAngle > p.SteepAngle && rotMag > highRotation) ||
		(vertical < smashVerticalMax && rotMag >= moderateRotation) {
		return ShotOverhead
	}

	// Power: a flatter full swing well into the groundstroke range.
	if in.GyroAngle <= p.SteepAngle && in.Magnitude > minSwing*1.4 && in.Duration > fullSwingDuration {
		return ShotPower
	}

	// Volley: a short reactive block in the mid-magnitude band.
	if in.Magnitude >= p.VolleyLow && in.Magnitude <= p.VolleyHigh &&
		rotMag < lowRotation && in.Duration < fullSwingDuration {
		return ShotVolley
	}

	if in.Magnitude > minSwing*1.6 {
		return ShotPower
	}
	return ShotUnknown
}

// backhandSignal computes the handedness tag and the learning confidence.
// Negative forearm roll beyond the adaptive threshold reads as a backhand,
// gated by a rotation floor below which the axis is unreliable.
func backhandSignal(roll, rotMag float64, duration time.Duration, magnitude, minSwing float64, cal calibration.State) (bool, float64) {
	threshold := cal.BackhandThreshold()

	floor := rollFloorFull
	if duration < fullSwingDuration {
		floor = rollFloorQuick
	}

	backhand := false
	switch {
	case roll > forehandShortCircuit:
		// Strongly positive roll short-circuits to forehand.
	case rotMag < floor:
		// Too little rotation to trust the roll axis; default forehand.
	case roll < threshold:
		backhand = true
	}

	magConfidence := math.Min(1, magnitude/(2*minSwing))
	distConfidence := math.Min(1, math.Abs(roll-threshold)/math.Abs(threshold))
	return backhand, (magConfidence + distConfidence) / 2
}
