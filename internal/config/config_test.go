package config_test

import (
	"testing"
	"time"

	"github.com/rpggio/fastthink/internal/config"
	"github.com/rpggio/fastthink/internal/fastthink/limits"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FASTTHINK_CONFIG_PATH",
		"FASTTHINK_LIMITS_PRESET",
		"FASTTHINK_LOG_LEVEL",
		"FASTTHINK_MAX_THOUGHTS",
		"FASTTHINK_THINKING_TIMEOUT",
		"FASTTHINK_SESSION_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_DefaultsWhenNoEnvSet(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "default", cfg.Limits.Preset)
	require.Equal(t, "info", cfg.Log.Level)

	resolved, err := cfg.Resolve()
	require.NoError(t, err)
	require.Equal(t, limits.Default(), resolved)
}

func TestLoad_EnvOverridesPresetAndLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("FASTTHINK_LIMITS_PRESET", "strict")
	t.Setenv("FASTTHINK_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "strict", cfg.Limits.Preset)
	require.Equal(t, "debug", cfg.Log.Level)

	resolved, err := cfg.Resolve()
	require.NoError(t, err)
	require.Equal(t, limits.Strict(), resolved)
}

func TestLoad_EnvOverridesIndividualLimitFields(t *testing.T) {
	clearEnv(t)
	t.Setenv("FASTTHINK_MAX_THOUGHTS", "7")
	t.Setenv("FASTTHINK_THINKING_TIMEOUT", "5s")
	t.Setenv("FASTTHINK_SESSION_TTL", "1m")

	cfg, err := config.Load()
	require.NoError(t, err)

	resolved, err := cfg.Resolve()
	require.NoError(t, err)
	require.Equal(t, 7, resolved.MaxThoughts)
	require.Equal(t, 5*time.Second, resolved.ThinkingTimeout)
	require.Equal(t, time.Minute, resolved.SessionTTL)
	// Everything else stays at the default preset's values.
	require.Equal(t, limits.Default().MaxEntities, resolved.MaxEntities)
}

func TestLoad_InvalidMaxThoughtsIsRejected(t *testing.T) {
	clearEnv(t)
	t.Setenv("FASTTHINK_MAX_THOUGHTS", "not-a-number")

	_, err := config.Load()
	require.Error(t, err)
}

func TestResolve_UnknownPresetIsRejected(t *testing.T) {
	cfg := config.Config{Limits: config.LimitsConfig{Preset: "nonsense"}}
	_, err := cfg.Resolve()
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, "info", levelName(config.ParseLogLevel("unknown")))
	require.Equal(t, "debug", levelName(config.ParseLogLevel("debug")))
	require.Equal(t, "warn", levelName(config.ParseLogLevel("warn")))
	require.Equal(t, "error", levelName(config.ParseLogLevel("error")))
}

func levelName(l interface{ String() string }) string {
	switch l.String() {
	case "DEBUG":
		return "debug"
	case "WARN":
		return "warn"
	case "ERROR":
		return "error"
	default:
		return "info"
	}
}
