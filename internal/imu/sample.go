// Package imu defines raw inertial measurement types shared by the motion
// pipeline, classifier, and sensor sources.
package imu

import (
	"math"
	"time"
)

// Vector3 is a three-axis reading in device coordinates.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Magnitude returns the Euclidean norm of the vector.
func (v Vector3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sample is one motion reading from the wrist sensor.
//
// Acceleration is user acceleration (gravity removed) in g. Rotation is the
// rotation rate in rad/s. Samples arrive at a fixed interval (~12 Hz) and
// are consumed immediately; nothing retains them past classification.
type Sample struct {
	Acceleration Vector3   `json:"acceleration"`
	Rotation     Vector3   `json:"rotation"`
	Timestamp    time.Time `json:"timestamp"`
}

// Magnitude returns the acceleration magnitude of the sample.
func (s Sample) Magnitude() float64 {
	return s.Acceleration.Magnitude()
}

// SampleInterval is the nominal spacing between sensor samples.
const SampleInterval = 80 * time.Millisecond
