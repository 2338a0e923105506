package sensor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtwatch/internal/imu"
)

func writeReplayFile(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func collect(t *testing.T, ch <-chan imu.Sample) []imu.Sample {
	t.Helper()
	var out []imu.Sample
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, s)
		case <-deadline:
			t.Fatal("timed out draining sample channel")
		}
	}
}

func TestReplayEmitsSamples(t *testing.T) {
	path := writeReplayFile(t,
		`{"acceleration":{"x":0,"y":0,"z":1.5},"rotation":{"x":-2.0,"y":0,"z":0},"timestamp":"2026-08-01T10:00:00Z"}
{"acceleration":{"x":0,"y":1.0,"z":2.5},"rotation":{"x":0,"y":0,"z":0},"timestamp":"2026-08-01T10:00:00.08Z"}
`)

	r := &Replay{Path: path}
	ch, err := r.Start(context.Background())
	require.NoError(t, err)

	samples := collect(t, ch)
	require.Len(t, samples, 2)
	assert.InDelta(t, 1.5, samples[0].Acceleration.Z, 1e-9)
	assert.InDelta(t, -2.0, samples[0].Rotation.X, 1e-9)
	assert.Equal(t, 2026, samples[0].Timestamp.Year())
}

func TestReplaySkipsMalformedLines(t *testing.T) {
	path := writeReplayFile(t,
		`{"acceleration":{"z":1.0}}
not json at all
{"acceleration":{"z":2.0}}
`)

	r := &Replay{Path: path}
	ch, err := r.Start(context.Background())
	require.NoError(t, err)

	samples := collect(t, ch)
	require.Len(t, samples, 2)
	assert.InDelta(t, 2.0, samples[1].Acceleration.Z, 1e-9)
}

func TestReplayMissingFile(t *testing.T) {
	r := &Replay{Path: filepath.Join(t.TempDir(), "absent.jsonl")}
	_, err := r.Start(context.Background())
	assert.Error(t, err)
}

func TestReplayHonorsCancellation(t *testing.T) {
	path := writeReplayFile(t,
		`{"acceleration":{"z":1.0},"timestamp":"2026-08-01T10:00:00Z"}
{"acceleration":{"z":2.0},"timestamp":"2026-08-01T10:00:10Z"}
`)

	ctx, cancel := context.WithCancel(context.Background())
	r := &Replay{Path: path, Realtime: true}
	ch, err := r.Start(ctx)
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestNullSourceEmitsNothing(t *testing.T) {
	ch, err := Null{}.Start(context.Background())
	require.NoError(t, err)
	assert.Empty(t, collect(t, ch))
}

func TestSpoolConsumesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	content := `{"acceleration":{"z":2.2}}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte(content), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sp := &Spool{Dir: dir}
	ch, err := sp.Start(ctx)
	require.NoError(t, err)

	select {
	case s := <-ch:
		assert.InDelta(t, 2.2, s.Acceleration.Z, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("spool never delivered the existing file")
	}

	// The consumed file is removed.
	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "a.jsonl"))
		return os.IsNotExist(err)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSpoolPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sp := &Spool{Dir: dir, KeepFiles: true}
	ch, err := sp.Start(ctx)
	require.NoError(t, err)

	// Write to a temp name and rename in, the exporter contract.
	tmp := filepath.Join(dir, ".partial")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"acceleration":{"z":3.3}}`+"\n"), 0o644))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, "b.jsonl")))

	select {
	case s := <-ch:
		assert.InDelta(t, 3.3, s.Acceleration.Z, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("spool never delivered the new file")
	}
}

func TestSpoolCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "spool")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sp := &Spool{Dir: dir}
	_, err := sp.Start(ctx)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
