package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtwatch/internal/sport"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, string(sport.Pickleball), cfg.Match.Sport)
	assert.True(t, cfg.Player.WornOnSwingHand)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[match]
sport = "tennis"
kind = "singles"
sets_to_win = 3

[sensor]
source = "replay"
path = "/tmp/session.jsonl"
realtime = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tennis", cfg.Match.Sport)
	assert.Equal(t, 3, cfg.Match.SetsToWin)
	assert.Equal(t, "replay", cfg.Sensor.Source)
	assert.True(t, cfg.Sensor.Realtime)
	// Unset sections keep their defaults.
	assert.Equal(t, 11, cfg.Match.TargetScore)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
match:
  sport: padel
  kind: doubles
  golden_point: true
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "padel", cfg.Match.Sport)
	assert.True(t, cfg.Match.GoldenPoint)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"match":{"sport":"tennis","kind":"doubles","target_score":11,"sets_to_win":2}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tennis", cfg.Match.Sport)
}

func TestLoadRejectsUnknownSport(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[match]
sport = "squash"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadSensorSource(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[sensor]
source = "bluetooth"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.ini", "sport=tennis")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COURTWATCH_SPORT", "tennis")
	t.Setenv("COURTWATCH_KIND", "singles")
	t.Setenv("COURTWATCH_LOG_LEVEL", "debug")
	t.Setenv("COURTWATCH_WORN_ON_SWING_HAND", "false")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "tennis", cfg.Match.Sport)
	assert.Equal(t, "singles", cfg.Match.Kind)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Player.WornOnSwingHand)
}

func TestMatchSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Match.Sport = string(sport.Padel)
	cfg.Match.GoldenPoint = true

	mc := cfg.MatchSettings()
	assert.Equal(t, sport.Padel, mc.Sport)
	assert.Equal(t, sport.Doubles, mc.Kind)
	assert.True(t, mc.GoldenPoint)
	assert.Equal(t, 2, mc.SetsToWin)
}
