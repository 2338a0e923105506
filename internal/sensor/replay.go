package sensor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"courtwatch/internal/imu"
	"courtwatch/internal/logging"
)

// Replay plays back a recorded swing session from a JSONL file, one
// imu.Sample per line. Samples are emitted at the recorded cadence, or at
// the nominal sampling interval when timestamps are missing, unless
// real-time pacing is disabled.
type Replay struct {
	Path string
	// Realtime paces emission by sample timestamps; off, samples are
	// emitted as fast as the consumer drains them.
	Realtime bool
	Logger   *slog.Logger
}

// Start begins replaying the file. Malformed lines are skipped with a
// warning; the channel closes at end of file.
func (r *Replay) Start(ctx context.Context) (<-chan imu.Sample, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}

	log := r.Logger
	if log == nil {
		log = logging.Discard()
	}

	out := make(chan imu.Sample, 64)
	go func() {
		defer close(out)
		defer f.Close()

		scanner := bufio.NewScanner(f)
		var prev time.Time
		line := 0
		for scanner.Scan() {
			line++
			raw := scanner.Bytes()
			if len(raw) == 0 {
				continue
			}

			var s imu.Sample
			if err := json.Unmarshal(raw, &s); err != nil {
				log.Warn("skipping malformed replay line", "line", line, "error", err)
				continue
			}

			if r.Realtime {
				wait := imu.SampleInterval
				if !prev.IsZero() && !s.Timestamp.IsZero() {
					if d := s.Timestamp.Sub(prev); d > 0 && d < time.Second {
						wait = d
					}
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(wait):
				}
			}
			prev = s.Timestamp

			select {
			case <-ctx.Done():
				return
			case out <- s:
			}
		}
		if err := scanner.Err(); err != nil {
			log.Warn("replay read error", "error", err)
		}
	}()
	return out, nil
}
