package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carryon/internal/infra/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "MONGO_URI", "MONGO_DB",
		"KAFKA_BROKERS", "KAFKA_TOPIC_PREFIX",
		"OUTBOX_POLL_INTERVAL", "SESSION_TTL", "RETRY_BACKOFF",
		"S3_ENDPOINT", "S3_PUBLIC_ENDPOINT", "S3_ACCESS_KEY",
		"S3_SECRET_KEY", "S3_BUCKET", "S3_USE_SSL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.MongoURI)
	assert.Equal(t, "carryon", cfg.MongoDB)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, "carryon-photos", cfg.S3Bucket)
	assert.False(t, cfg.S3UseSSL)
	// Public endpoint falls back to the internal one.
	assert.Equal(t, cfg.S3Endpoint, cfg.S3PublicEndpoint)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("OUTBOX_POLL_INTERVAL", "2s")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("RETRY_BACKOFF", "100ms, 1s")
	t.Setenv("S3_USE_SSL", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, time.Second}, cfg.RetryBackoff)
	assert.True(t, cfg.S3UseSSL)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("OUTBOX_POLL_INTERVAL", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidBackoff(t *testing.T) {
	clearEnv(t)
	t.Setenv("RETRY_BACKOFF", "1s,never")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidBool(t *testing.T) {
	clearEnv(t)
	t.Setenv("S3_USE_SSL", "maybe")

	_, err := config.Load()
	assert.Error(t, err)
}
