package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"courtwatch/internal/imu"
	"courtwatch/internal/logging"
)

// Spool watches a directory for sample files dropped by a companion
// exporter. Each completed .jsonl file is replayed into the output channel
// and then removed so the spool does not grow unbounded.
//
// Exporters write to a temporary name and rename into place, so a Create
// event means the file is complete.
type Spool struct {
	Dir    string
	Logger *slog.Logger
	// KeepFiles leaves consumed files in place, for debugging.
	KeepFiles bool
}

// Start begins watching the spool directory. Files already present are
// consumed first, in name order, then new arrivals as they land.
func (sp *Spool) Start(ctx context.Context) (<-chan imu.Sample, error) {
	if err := os.MkdirAll(sp.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(sp.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch spool directory: %w", err)
	}

	log := sp.Logger
	if log == nil {
		log = logging.Discard()
	}

	out := make(chan imu.Sample, 64)
	go func() {
		defer close(out)
		defer watcher.Close()

		sp.drainExisting(ctx, out, log)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if !strings.HasSuffix(ev.Name, ".jsonl") {
					continue
				}
				sp.consume(ctx, ev.Name, out, log)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("spool watch error", "error", err)
			}
		}
	}()
	return out, nil
}

func (sp *Spool) drainExisting(ctx context.Context, out chan<- imu.Sample, log *slog.Logger) {
	matches, err := filepath.Glob(filepath.Join(sp.Dir, "*.jsonl"))
	if err != nil {
		log.Warn("spool scan failed", "error", err)
		return
	}
	for _, path := range matches {
		if ctx.Err() != nil {
			return
		}
		sp.consume(ctx, path, out, log)
	}
}

func (sp *Spool) consume(ctx context.Context, path string, out chan<- imu.Sample, log *slog.Logger) {
	replay := &Replay{Path: path, Logger: log}
	samples, err := replay.Start(ctx)
	if err != nil {
		log.Warn("spool file unreadable", "path", path, "error", err)
		return
	}
	n := 0
	for s := range samples {
		select {
		case <-ctx.Done():
			return
		case out <- s:
			n++
		}
	}
	log.Debug("consumed spool file", "path", path, "samples", n)
	if !sp.KeepFiles {
		if err := os.Remove(path); err != nil {
			log.Warn("failed to remove consumed spool file", "path", path, "error", err)
		}
	}
}
