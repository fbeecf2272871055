package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/rpggio/fastthink/internal/fastthink/limits"
	"gopkg.in/yaml.v3"
)

// Config defines how a FastThink host resolves its session limits and
// logging level. The engine itself takes no environment dependency;
// this is ambient configuration for whatever process embeds it.
type Config struct {
	Limits LimitsConfig `yaml:"limits"`
	Log    LogConfig    `yaml:"log"`
}

// LimitsConfig selects a limits preset and allows overriding individual
// fields on top of it.
type LimitsConfig struct {
	Preset           string         `yaml:"preset"` // "default", "strict", or "relaxed"
	MaxThoughts      *int           `yaml:"max_thoughts,omitempty"`
	MaxEntities      *int           `yaml:"max_entities,omitempty"`
	MaxConcepts      *int           `yaml:"max_concepts,omitempty"`
	MaxDepth         *int           `yaml:"max_depth,omitempty"`
	ThinkingTimeout  *time.Duration `yaml:"thinking_timeout,omitempty"`
	SessionTTL       *time.Duration `yaml:"session_ttl,omitempty"`
	MaxRecallResults *int           `yaml:"max_recall_results,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment
// variables, following the same override order as the rest of the
// ambient stack: built-in defaults, then file, then environment.
func Load() (Config, error) {
	cfg := Config{
		Limits: LimitsConfig{Preset: "default"},
		Log:    LogConfig{Level: "info"},
	}

	if path := os.Getenv("FASTTHINK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if preset := os.Getenv("FASTTHINK_LIMITS_PRESET"); preset != "" {
		cfg.Limits.Preset = preset
	}
	if level := os.Getenv("FASTTHINK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if maxThoughts := os.Getenv("FASTTHINK_MAX_THOUGHTS"); maxThoughts != "" {
		value, err := strconv.Atoi(maxThoughts)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FASTTHINK_MAX_THOUGHTS: %w", err)
		}
		cfg.Limits.MaxThoughts = &value
	}
	if timeout := os.Getenv("FASTTHINK_THINKING_TIMEOUT"); timeout != "" {
		value, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FASTTHINK_THINKING_TIMEOUT: %w", err)
		}
		cfg.Limits.ThinkingTimeout = &value
	}
	if ttl := os.Getenv("FASTTHINK_SESSION_TTL"); ttl != "" {
		value, err := time.ParseDuration(ttl)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FASTTHINK_SESSION_TTL: %w", err)
		}
		cfg.Limits.SessionTTL = &value
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Resolve turns the configured preset and overrides into a concrete
// limits.Limits, the value FastThink's Manager actually consumes.
func (c Config) Resolve() (limits.Limits, error) {
	var l limits.Limits
	switch c.Limits.Preset {
	case "", "default":
		l = limits.Default()
	case "strict":
		l = limits.Strict()
	case "relaxed":
		l = limits.Relaxed()
	default:
		return limits.Limits{}, fmt.Errorf("unknown limits preset: %q", c.Limits.Preset)
	}

	if v := c.Limits.MaxThoughts; v != nil {
		l = l.WithMaxThoughts(*v)
	}
	if v := c.Limits.MaxEntities; v != nil {
		l = l.WithMaxEntities(*v)
	}
	if v := c.Limits.MaxConcepts; v != nil {
		l = l.WithMaxConcepts(*v)
	}
	if v := c.Limits.MaxDepth; v != nil {
		l = l.WithMaxDepth(*v)
	}
	if v := c.Limits.ThinkingTimeout; v != nil {
		l = l.WithTimeout(*v)
	}
	if v := c.Limits.SessionTTL; v != nil {
		l = l.WithSessionTTL(*v)
	}
	if v := c.Limits.MaxRecallResults; v != nil {
		l = l.WithMaxRecallResults(*v)
	}

	return l, nil
}

// ParseLogLevel maps the configured level name to a slog level, the
// way cmd-level wiring in the teacher's main.go does.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
