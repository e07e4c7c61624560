package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, SinkMemory, cfg.Sink.Backend)
	assert.False(t, cfg.Auth.Required)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("FORMCHAT_PORT", "127.0.0.1:9000")
	t.Setenv("FORMCHAT_STORE", "Redis")
	t.Setenv("FORMCHAT_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("FORMCHAT_SESSION_TTL", "90")
	t.Setenv("FORMCHAT_SINK", "sqlite")
	t.Setenv("FORMCHAT_AUTH_REQUIRED", "yes")
	t.Setenv("FORMCHAT_JWT_SECRET", "s3cret")
	t.Setenv("FORMCHAT_TOKEN_TTL", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, 90*time.Second, cfg.Store.TTL)
	assert.Equal(t, "./data/formchat.db", cfg.Sink.DSN)
	assert.True(t, cfg.Auth.Required)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
}

func TestValidate(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"redis without url", map[string]string{"FORMCHAT_STORE": "redis"}, "FORMCHAT_REDIS_URL"},
		{"unknown store", map[string]string{"FORMCHAT_STORE": "etcd"}, "unknown FORMCHAT_STORE"},
		{"postgres without dsn", map[string]string{"FORMCHAT_SINK": "postgres"}, "FORMCHAT_SINK_DSN"},
		{"unknown sink", map[string]string{"FORMCHAT_SINK": "kafka"}, "unknown FORMCHAT_SINK"},
		{"auth without secret", map[string]string{"FORMCHAT_AUTH_REQUIRED": "true"}, "FORMCHAT_JWT_SECRET"},
		{"bad key", map[string]string{"FORMCHAT_ENCRYPTION_KEY": "c2hvcnQ="}, "FORMCHAT_ENCRYPTION_KEY"},
		{"bad level", map[string]string{"FORMCHAT_LOG_LEVEL": "loud"}, "FORMCHAT_LOG_LEVEL"},
		{"bad format", map[string]string{"FORMCHAT_LOG_FORMAT": "xml"}, "FORMCHAT_LOG_FORMAT"},
		{"good key", map[string]string{"FORMCHAT_ENCRYPTION_KEY": key}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FORMCHAT_TEST_DOTENV=from-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FORMCHAT_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("FORMCHAT_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_DUR", "nonsense")
	assert.Equal(t, time.Minute, getEnvDuration("X_DUR", time.Minute))
	t.Setenv("X_DUR", "2s")
	assert.Equal(t, 2*time.Second, getEnvDuration("X_DUR", 0))
}
