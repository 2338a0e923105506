// Package config handles configuration loading and validation for
// courtwatchd.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"courtwatch/internal/scoring"
	"courtwatch/internal/sport"
)

// Config holds the complete daemon configuration.
type Config struct {
	// Player describes how the watch is worn.
	Player PlayerConfig `toml:"player" json:"player" yaml:"player"`

	// Match holds default match-format settings.
	Match MatchConfig `toml:"match" json:"match" yaml:"match"`

	// Sensor selects where motion samples come from.
	Sensor SensorConfig `toml:"sensor" json:"sensor" yaml:"sensor"`

	// Storage configures the match history database.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// PlayerConfig describes the wearer.
type PlayerConfig struct {
	// WornOnSwingHand is true when the watch is on the racket hand.
	// Thresholds scale down when it is on the off hand.
	WornOnSwingHand bool `toml:"worn_on_swing_hand" json:"worn_on_swing_hand" yaml:"worn_on_swing_hand"`
}

// MatchConfig holds default match-format settings; the start command can
// override each of them.
type MatchConfig struct {
	// Sport is one of "pickleball", "tennis", "padel".
	Sport string `toml:"sport" json:"sport" yaml:"sport"`

	// Kind is "singles" or "doubles".
	Kind string `toml:"kind" json:"kind" yaml:"kind"`

	// TargetScore is the rally-scoring game target.
	TargetScore int `toml:"target_score" json:"target_score" yaml:"target_score"`

	// WinByTwo extends rally-scoring games until one side leads by two.
	WinByTwo bool `toml:"win_by_two" json:"win_by_two" yaml:"win_by_two"`

	// SetsToWin ends set-based matches when one side reaches it.
	SetsToWin int `toml:"sets_to_win" json:"sets_to_win" yaml:"sets_to_win"`

	// GoldenPoint makes deuce sudden death (padel).
	GoldenPoint bool `toml:"golden_point" json:"golden_point" yaml:"golden_point"`
}

// SensorConfig selects the motion-sample source.
type SensorConfig struct {
	// Source is "spool", "replay", or "none".
	Source string `toml:"source" json:"source" yaml:"source"`

	// Path is the spool directory or replay file.
	Path string `toml:"path" json:"path" yaml:"path"`

	// Realtime paces replay by recorded timestamps.
	Realtime bool `toml:"realtime" json:"realtime" yaml:"realtime"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	// Path is the SQLite database file for match history.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// FilePath, when set, sends logs to a file instead of stderr.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".courtwatch")
	return &Config{
		Player: PlayerConfig{
			WornOnSwingHand: true,
		},
		Match: MatchConfig{
			Sport:       string(sport.Pickleball),
			Kind:        string(sport.Doubles),
			TargetScore: 11,
			WinByTwo:    true,
			SetsToWin:   2,
		},
		Sensor: SensorConfig{
			Source: "spool",
			Path:   filepath.Join(dataDir, "spool"),
		},
		Storage: StorageConfig{
			Path: filepath.Join(dataDir, "matches.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file at path, applies environment overrides, and
// validates. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile reads and parses a config file based on its extension.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies COURTWATCH_* environment variables on top of
// the loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("COURTWATCH_SPORT"); v != "" {
		c.Match.Sport = v
	}
	if v := os.Getenv("COURTWATCH_KIND"); v != "" {
		c.Match.Kind = v
	}
	if v := os.Getenv("COURTWATCH_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("COURTWATCH_SENSOR_SOURCE"); v != "" {
		c.Sensor.Source = v
	}
	if v := os.Getenv("COURTWATCH_SENSOR_PATH"); v != "" {
		c.Sensor.Path = v
	}
	if v := os.Getenv("COURTWATCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("COURTWATCH_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("COURTWATCH_WORN_ON_SWING_HAND"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Player.WornOnSwingHand = b
		}
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if _, err := sport.Parse(c.Match.Sport); err != nil {
		return err
	}
	if _, err := sport.ParseKind(c.Match.Kind); err != nil {
		return err
	}
	if c.Match.TargetScore < 1 {
		return fmt.Errorf("match target_score must be positive, got %d", c.Match.TargetScore)
	}
	if c.Match.SetsToWin < 1 {
		return fmt.Errorf("match sets_to_win must be positive, got %d", c.Match.SetsToWin)
	}
	switch c.Sensor.Source {
	case "spool", "replay", "none":
	default:
		return fmt.Errorf("sensor source must be spool, replay, or none, got %q", c.Sensor.Source)
	}
	if c.Sensor.Source != "none" && c.Sensor.Path == "" {
		return fmt.Errorf("sensor path required for source %q", c.Sensor.Source)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path must be set")
	}
	return nil
}

// MatchSettings converts the config defaults into a scoring.MatchConfig.
func (c *Config) MatchSettings() scoring.MatchConfig {
	sp, _ := sport.Parse(c.Match.Sport)
	kind, _ := sport.ParseKind(c.Match.Kind)
	return scoring.MatchConfig{
		Sport:       sp,
		Kind:        kind,
		FirstServer: scoring.SideA,
		TargetScore: c.Match.TargetScore,
		WinByTwo:    c.Match.WinByTwo,
		SetsToWin:   c.Match.SetsToWin,
		GoldenPoint: c.Match.GoldenPoint,
	}
}
