package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 100, cfg.Feed.FetchLimit)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Scoring.RelevanceWeights)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: 9090
  rate_limit_rps: 10
database:
  url: postgres://db:5432/fedscout
scoring:
  relevance_weights:
    naics: 0.4
    semantic: 0.2
    geographic: 0.2
    size: 0.1
    past_performance: 0.1
logging:
  level: debug
  pretty: true
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, float64(10), cfg.Server.RateLimitRPS)
	assert.Equal(t, "postgres://db:5432/fedscout", cfg.Database.URL)
	assert.Equal(t, 0.4, cfg.Scoring.RelevanceWeights["naics"])
	assert.True(t, cfg.Logging.Pretty)
	// Untouched fields keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

	t.Setenv("FEDSCOUT_PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://env:5432/fedscout")
	t.Setenv("SAM_API_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres://env:5432/fedscout", cfg.Database.URL)
	assert.Equal(t, "env-key", cfg.Feed.SAMAPIKey)
}

func TestLoad_Validation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
