package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PROJECTION", "")
	t.Setenv("RESPONSE_TIMEOUT", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NatsURL)
	assert.Equal(t, "Exchange/ModuleKey/Symbol", cfg.Projection)
	assert.Equal(t, 5*time.Minute, cfg.ResponseTimeout)
	assert.Equal(t, "risk.table.request", cfg.RequestSubject)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadDotEnvOverrides(t *testing.T) {
	// registered so t.Setenv restores them after loadDotEnv writes
	t.Setenv("PROJECTION", "")
	t.Setenv("RESPONSE_TIMEOUT", "")
	t.Setenv("WORKER_CONCURRENCY", "")
	t.Setenv("LOG_LEVEL", "")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nPROJECTION=\"Exchange/Symbol\"\nRESPONSE_TIMEOUT=90s\nWORKER_CONCURRENCY=7\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "Exchange/Symbol", cfg.Projection)
	assert.Equal(t, 90*time.Second, cfg.ResponseTimeout)
	assert.Equal(t, 7, cfg.Concurrency)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("RESPONSE_TIMEOUT", "soon")
	t.Setenv("WORKER_CONCURRENCY", "many")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.ResponseTimeout)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestMissingEnvFileIsNotFatal(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
