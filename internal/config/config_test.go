package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_BACKEND", "JSONFILE")
	t.Setenv("JSON_STORE_PATH", "/tmp/listings.json")
	t.Setenv("SUPPORTED_LANGS", "en, ru ,bg")
	t.Setenv("LISTINGS_MAX_LIMIT", "5000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageBackendJSONFile, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/listings.json", cfg.Storage.JSONPath)
	assert.Equal(t, []string{"en", "ru", "bg"}, cfg.Listings.SupportedLangs)
	assert.Equal(t, 1000, cfg.Listings.MaxLimit)
	assert.Equal(t, 200, cfg.Listings.DefaultLimit)
	assert.True(t, cfg.Listings.FacetsActiveOnly)
	assert.Equal(t, 300*time.Second, cfg.Cache.FacetsCacheTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
	assert.False(t, cfg.S3.Enabled())
}

func TestLoad_UnknownBackend(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_BACKEND", "mongo")

	_, err := Load()
	assert.Error(t, err)
}
