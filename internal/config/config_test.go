package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 60*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.Optimization.WorkerCount)
	assert.Equal(t, 100, cfg.Optimization.QueueSize)
	assert.Equal(t, 40, cfg.Firefly.PopulationSize)
	assert.Equal(t, 0.25, cfg.Firefly.Alpha)
	assert.Equal(t, 0.2, cfg.Firefly.BetaMin)
	assert.Equal(t, "exponential", cfg.Firefly.Decay)
	assert.Equal(t, "best", cfg.Firefly.Exploration)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_READ_TIMEOUT", "5s")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("OPT_WORKER_COUNT", "3")
	t.Setenv("FFA_GAMMA", "0.5")
	t.Setenv("FFA_DECAY", "geometric")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 3, cfg.Optimization.WorkerCount)
	assert.Equal(t, 0.5, cfg.Firefly.Gamma)
	assert.Equal(t, "geometric", cfg.Firefly.Decay)
}

func TestLoadExplicitLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparsable port", "HTTP_PORT", "eighty"},
		{"port out of range", "HTTP_PORT", "70000"},
		{"no workers", "OPT_WORKER_COUNT", "0"},
		{"negative queue", "OPT_QUEUE_SIZE", "-1"},
		{"population above cap", "FFA_POPULATION_SIZE", "501"},
		{"betaMin above beta0", "FFA_BETA_MIN", "2"},
		{"delta above one", "FFA_DELTA", "1.5"},
		{"negative alpha", "FFA_ALPHA", "-0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
