package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fit-analysis/internal/recovery"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"max_input_bytes": 1024,
		"max_depth": 32,
		"concurrency": 8,
		"stages": "direct,fence",
		"envelope_path": "openai",
		"log_level": "debug",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 1024, cfg.MaxInputBytes)
	assert.Equal(t, 32, cfg.MaxDepth)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "direct,fence", cfg.Stages)
	assert.Equal(t, "choices.0.message.content", cfg.ResolvedEnvelopePath())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.True(t, cfg.Verbose)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")

	var cfgErr *Error
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Defaults()},
		{name: "empty", cfg: Config{}},
		{name: "negative input limit", cfg: Config{MaxInputBytes: -1}, wantErr: "max_input_bytes"},
		{name: "huge depth", cfg: Config{MaxDepth: 20000}, wantErr: "max_depth"},
		{name: "too many workers", cfg: Config{Concurrency: 1000}, wantErr: "concurrency"},
		{name: "unknown log level", cfg: Config{LogLevel: "trace"}, wantErr: "log_level"},
		{name: "unknown stage", cfg: Config{Stages: "direct,magic"}, wantErr: "stages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			var cfgErr *Error
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvMaxDepth:     "16",
		EnvConcurrency:  " 2 ",
		EnvLogLevel:     "warn",
		EnvEnvelopePath: "response",
		EnvStages:       "",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := Config{MaxDepth: 64, Stages: "direct"}
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, 16, cfg.MaxDepth)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "response", cfg.EnvelopePath)
	assert.Equal(t, "direct", cfg.Stages, "blank variables do not override")
	assert.Equal(t, 0, cfg.MaxInputBytes)
}

func TestApplyEnv_InvalidInteger(t *testing.T) {
	cfg := Config{}
	err := cfg.ApplyEnv(func(key string) (string, bool) {
		if key == EnvMaxInputBytes {
			return "lots", true
		}
		return "", false
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvMaxInputBytes)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FIT_TEST_DOTENV_VALUE=7\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("FIT_TEST_DOTENV_VALUE") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "7", os.Getenv("FIT_TEST_DOTENV_VALUE"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		MaxDepth: 10,
		Stages:   "direct",
	}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, 10, merged.MaxDepth)
	assert.Equal(t, "direct", merged.Stages)
	assert.Equal(t, recovery.DefaultMaxInputBytes, merged.MaxInputBytes)
	assert.Equal(t, 4, merged.Concurrency)
	assert.Equal(t, "info", merged.LogLevel)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := &Config{Concurrency: 3}
	merged := cfg.MergeWithDefaults(Config{})
	assert.Equal(t, 3, merged.Concurrency)
	assert.Equal(t, 0, merged.MaxDepth)
	assert.Empty(t, merged.LogLevel)
}

func TestRecoveryOptions(t *testing.T) {
	cfg := Config{MaxDepth: 8, Stages: "direct,fence"}
	engine := recovery.New(cfg.RecoveryOptions(slog.New(slog.DiscardHandler))...)

	assert.Equal(t, 8, engine.MaxDepth())
	assert.Equal(t, []recovery.Stage{recovery.StageDirect, recovery.StageFence}, engine.Stages())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, (&Config{}).SlogLevel())
	assert.Equal(t, slog.LevelError, (&Config{LogLevel: "ERROR"}).SlogLevel())
}
