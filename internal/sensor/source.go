// Package sensor provides motion-sample sources for the pipeline: a JSONL
// replay source for recorded sessions and a spool watcher that picks up
// sample files dropped by a companion exporter.
//
// A source that never emits models an unavailable sensor; scoring keeps
// working through direct input regardless.
package sensor

import (
	"context"

	"courtwatch/internal/imu"
)

// Source emits motion samples until its context is canceled or the
// underlying data runs out. The returned channel is closed when done.
type Source interface {
	Start(ctx context.Context) (<-chan imu.Sample, error)
}

// Null is a Source for an unavailable sensor: it emits nothing.
type Null struct{}

// Start returns a channel that closes without emitting.
func (Null) Start(ctx context.Context) (<-chan imu.Sample, error) {
	out := make(chan imu.Sample)
	close(out)
	return out, nil
}
