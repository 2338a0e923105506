// Package sport defines the sports and match formats courtwatch tracks.
package sport

import "fmt"

// Sport identifies a tracked racket sport.
type Sport string

const (
	// Pickleball uses rally scoring with side-out serve rules.
	Pickleball Sport = "pickleball"
	// Tennis uses traditional deuce/advantage scoring with sets.
	Tennis Sport = "tennis"
	// Padel is doubles-only traditional scoring with optional golden point.
	Padel Sport = "padel"
)

// All lists every supported sport.
func All() []Sport {
	return []Sport{Pickleball, Tennis, Padel}
}

// Parse converts a string into a Sport.
func Parse(s string) (Sport, error) {
	switch Sport(s) {
	case Pickleball, Tennis, Padel:
		return Sport(s), nil
	default:
		return "", fmt.Errorf("unknown sport: %q", s)
	}
}

// Valid reports whether s is a supported sport.
func (s Sport) Valid() bool {
	switch s {
	case Pickleball, Tennis, Padel:
		return true
	}
	return false
}

// Kind identifies the match format.
type Kind string

const (
	// Singles is a one-versus-one match.
	Singles Kind = "singles"
	// Doubles is a two-versus-two match.
	Doubles Kind = "doubles"
)

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Singles, Doubles:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown match kind: %q", s)
	}
}
