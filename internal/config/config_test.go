package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADAPTIQ_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BackendSQLite, cfg.SessionBackend)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	require.NotNil(t, cfg.Engine.Estimator.Prior)
	assert.Equal(t, 1.0, cfg.Engine.Estimator.Prior.SD)
	assert.Equal(t, 0.3, cfg.Engine.Rules.ConvergenceSE)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADAPTIQ_JWT_SECRET", testSecret)
	t.Setenv("ADAPTIQ_SESSION_BACKEND", "Redis")
	t.Setenv("ADAPTIQ_REDIS_ADDR", "cache:6379")
	t.Setenv("ADAPTIQ_CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("ADAPTIQ_MAX_QUESTIONS", "25")
	t.Setenv("ADAPTIQ_TIME_BUDGET", "45m")
	t.Setenv("ADAPTIQ_ESTIMATOR", "mle")
	t.Setenv("ADAPTIQ_EIQ_CENTER", "600")
	t.Setenv("ADAPTIQ_LOG_HASH_IDS", "off")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.SessionBackend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 25, cfg.Engine.Rules.MaxQuestions)
	assert.Equal(t, 45*time.Minute, cfg.Engine.Rules.TimeBudget)
	assert.Nil(t, cfg.Engine.Estimator.Prior)
	assert.Equal(t, 600.0, cfg.Engine.Scoring.EIQ.Center)
	assert.False(t, cfg.HashIdentifiers)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"ADAPTIQ_JWT_SECRET": ""}, "ADAPTIQ_JWT_SECRET"},
		{"unknown backend", map[string]string{"ADAPTIQ_SESSION_BACKEND": "etcd"}, "ADAPTIQ_SESSION_BACKEND"},
		{"zero idle", map[string]string{"ADAPTIQ_IDLE_TIMEOUT": "0s"}, "ADAPTIQ_IDLE_TIMEOUT"},
		{"bad rules", map[string]string{"ADAPTIQ_MIN_ITEMS": "20", "ADAPTIQ_MAX_ITEMS": "10"}, "engine"},
		{"bad prior", map[string]string{"ADAPTIQ_PRIOR_SD": "0"}, "prior"},
		{"shifted prior", map[string]string{"ADAPTIQ_PRIOR_MEAN": "0.5"}, "prior mean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADAPTIQ_JWT_SECRET", testSecret)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "nope")
	t.Setenv("X_FLOAT", "1.2.3")
	t.Setenv("X_DUR", "ten minutes")
	t.Setenv("X_BOOL", "maybe")

	if got := getEnvInt("X_INT", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want 7", got)
	}
	if got := getEnvFloat("X_FLOAT", 0.5); got != 0.5 {
		t.Errorf("getEnvFloat = %v, want 0.5", got)
	}
	if got := getEnvDuration("X_DUR", time.Second); got != time.Second {
		t.Errorf("getEnvDuration = %v, want 1s", got)
	}
	if got := getEnvBool("X_BOOL", true); !got {
		t.Errorf("getEnvBool = %v, want true", got)
	}
}

func TestLoadEngineNeedsNoServerSettings(t *testing.T) {
	t.Setenv("ADAPTIQ_JWT_SECRET", "")
	t.Setenv("ADAPTIQ_MIN_ITEMS", "7")

	engine, err := LoadEngine()
	require.NoError(t, err)
	assert.Equal(t, 7, engine.Rules.MinItemsPerSection)

	_, err = Load()
	assert.Error(t, err)
}
