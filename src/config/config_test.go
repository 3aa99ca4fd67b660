package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "YELP_API_KEY", "YELP_API_HOST", "STORE_BACKEND", "ELASTIC_URL",
		"MONGO_DB_CLUSTER", "DATABASE_NAME", "SECRET_KEY", "UPSTREAM_TIMEOUT",
		"SESSION_TTL", "CORS_ORIGINS",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "https://api.yelp.com", cfg.YelpAPIHost)
	assert.Equal(t, BackendElastic, cfg.StoreBackend)
	assert.Equal(t, "http://localhost:9200", cfg.ElasticURL)
	assert.Equal(t, "restaurant_db", cfg.Database)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_BACKEND", "Mongo")
	t.Setenv("MONGO_DB_CLUSTER", "mongodb://localhost:27017")
	t.Setenv("UPSTREAM_TIMEOUT", "3")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("YELP_API_KEY=from-file\nSECRET_KEY=s3cret\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.YelpAPIKey)
	assert.Equal(t, "s3cret", cfg.SecretKey)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPSTREAM_TIMEOUT", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "UPSTREAM_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cfg := &Config{StoreBackend: BackendMemory}
	assert.ErrorContains(t, cfg.Validate(ServiceGateway), "YELP_API_KEY")
	assert.ErrorContains(t, cfg.Validate(ServiceAccounts), "SECRET_KEY")
	assert.Error(t, cfg.Validate("billing"))

	cfg.YelpAPIKey = "k"
	cfg.SecretKey = "s"
	assert.NoError(t, cfg.Validate(ServiceGateway))
	assert.NoError(t, cfg.Validate(ServiceAccounts))

	cfg.StoreBackend = BackendMongo
	assert.ErrorContains(t, cfg.Validate(ServiceGateway), "MONGO_DB_CLUSTER")

	cfg.StoreBackend = "redis"
	assert.ErrorContains(t, cfg.Validate(ServiceGateway), "STORE_BACKEND")
}
