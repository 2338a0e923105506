package motion

import (
	"time"

	"github.com/google/uuid"

	"courtwatch/internal/classify"
	"courtwatch/internal/sport"
)

// DetectedShot is one classified swing. It is immutable once created except
// for the scored-point association, which may only flip to true.
type DetectedShot struct {
	ID             string            `json:"id"`
	Type           classify.ShotType `json:"type"`
	Intensity      float64           `json:"intensity"` // normalized 0-1
	Magnitude      float64           `json:"magnitude"` // raw peak, g
	Timestamp      time.Time         `json:"timestamp"`
	GyroAngle      float64           `json:"gyro_angle"` // degrees
	Duration       time.Duration     `json:"duration"`
	Sport          sport.Sport       `json:"sport"`
	SincePrevious  time.Duration     `json:"since_previous"`
	Backhand       bool              `json:"backhand"`
	PointCandidate bool              `json:"point_candidate"`

	scoredPoint bool
}

func newShotID() string {
	return uuid.NewString()
}

// MarkScored associates the shot with a scored point. The flag never
// flips back.
func (s *DetectedShot) MarkScored() {
	s.scoredPoint = true
}

// ScoredPoint reports whether the shot was associated with a scored point.
func (s *DetectedShot) ScoredPoint() bool {
	return s.scoredPoint
}
