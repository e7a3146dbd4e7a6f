package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATASET_SOURCE", "json")
	t.Setenv("RABBITMQ_ENABLED", "false")
	t.Setenv("FLUENTBIT_ENABLED", "false")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Rest.PORT)
	assert.Equal(t, DatasetSourceJSON, cfg.Dataset.Source)
	assert.Equal(t, "data/houses.json", cfg.Dataset.HousesFile)
	assert.Equal(t, 30, cfg.Recommend.CandidateLimit)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 30*time.Second, cfg.HTTPClientTimeout)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "PORT=9090\nRECOMMEND_CANDIDATE_LIMIT=12\nCORS_ALLOWED_ORIGINS=http://a.kr, http://b.kr\nSESSION_TTL=15m\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	// godotenv не перезаписывает уже заданные переменные, поэтому чистим их на время теста
	for _, key := range []string{"PORT", "RECOMMEND_CANDIDATE_LIMIT", "CORS_ALLOWED_ORIGINS", "SESSION_TTL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("DATASET_SOURCE", "json")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Rest.PORT)
	assert.Equal(t, 12, cfg.Recommend.CandidateLimit)
	assert.Equal(t, []string{"http://a.kr", "http://b.kr"}, cfg.Rest.CORSAllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("DATASET_SOURCE", "postgres")
		t.Setenv("DATABASE_URL", "")
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})
	t.Run("unknown source", func(t *testing.T) {
		t.Setenv("DATASET_SOURCE", "mysql")
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})
	t.Run("rabbitmq without url", func(t *testing.T) {
		t.Setenv("DATASET_SOURCE", "json")
		t.Setenv("RABBITMQ_ENABLED", "true")
		t.Setenv("RABBITMQ_URL", "")
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
	assert.True(t, getEnvAsBool("X_BOOL", true))
	assert.Equal(t, time.Second, getEnvAsDuration("X_DUR", time.Second))
}
