package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jelly-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Firestore.Collection, settings.Firestore.Collection)
	assert.Equal(t, "JellyLocations", settings.Firestore.GeoCollection)
	assert.True(t, settings.Storage.UseSSL)
	assert.Equal(t, "jelly", settings.NATS.SubjectPrefix)
	assert.Equal(t, 0, settings.Pipeline.MaxConcurrency)
	assert.Equal(t, int64(domain.DefaultImageMaxBytes), settings.Pipeline.ImageMaxBytes)
	assert.Equal(t, 10*time.Minute, settings.Pipeline.ImageCacheTTL)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("firestore.project_id", "jelly-prod")
	_ = store.Set("storage.use_ssl", false)
	_ = store.Set("pipeline.max_concurrency", 16)
	_ = store.Set("pipeline.fetch_rate", 5.5)
	_ = store.Set("pipeline.image_cache_ttl", "30s")

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, "jelly-prod", settings.Firestore.ProjectID)
	assert.False(t, settings.Storage.UseSSL)
	assert.Equal(t, 16, settings.Pipeline.MaxConcurrency)
	assert.InDelta(t, 5.5, settings.Pipeline.FetchRate, 0.001)
	assert.Equal(t, 30*time.Second, settings.Pipeline.ImageCacheTTL)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("pipeline.max_concurrency", -3)
	_ = store.Set("pipeline.image_max_bytes", 0)
	_ = store.Set("pipeline.image_cache_ttl", "soon")

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, 0, settings.Pipeline.MaxConcurrency)
	assert.Equal(t, int64(domain.DefaultImageMaxBytes), settings.Pipeline.ImageMaxBytes)
	assert.Equal(t, 10*time.Minute, settings.Pipeline.ImageCacheTTL)
}

func TestSettingsService_Get_AppliesOverlay(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("firestore.project_id", "from-file")

	service := NewSettingsService(store, func(s *domain.AppSettings) error {
		s.Firestore.ProjectID = "from-env"
		return nil
	})

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.Firestore.ProjectID)
}

func TestSettingsService_Get_OverlayError(t *testing.T) {
	boom := errors.New("bad env")
	service := NewSettingsService(memory.NewConfigStore(), func(*domain.AppSettings) error {
		return boom
	})

	_, err := service.Get()
	assert.ErrorIs(t, err, boom)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.Firestore.ProjectID = "jelly-prod"
	settings.Storage.Endpoint = "localhost:9000"
	settings.Storage.Bucket = "images"
	settings.Pipeline.FetchRetries = 2
	settings.Pipeline.ImageCacheTTL = time.Minute

	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "jelly-prod", got.Firestore.ProjectID)
	assert.Equal(t, "images", got.Storage.Bucket)
	assert.Equal(t, 2, got.Pipeline.FetchRetries)
	assert.Equal(t, time.Minute, got.Pipeline.ImageCacheTTL)

	_, exists := store.Get("storage.secret_key")
	assert.False(t, exists, "empty secrets are not written")
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	tests := []struct {
		key   string
		value string
		want  any
	}{
		{"nats.url", "nats://localhost:4222", "nats://localhost:4222"},
		{"storage.use_ssl", "false", false},
		{"pipeline.max_concurrency", "8", 8},
		{"pipeline.fetch_rate", "2.5", 2.5},
		{"pipeline.image_cache_ttl", "90s", "1m30s"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			require.NoError(t, service.Set(tt.key, tt.value))
			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	tests := []struct {
		key   string
		value string
	}{
		{"search.mode", "hybrid"},
		{"pipeline.max_concurrency", "-1"},
		{"pipeline.fetch_retries", "lots"},
		{"pipeline.fetch_rate", "fast"},
		{"storage.use_ssl", "maybe"},
		{"pipeline.image_cache_ttl", "ten minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := service.Set(tt.key, tt.value)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(memory.NewConfigStore(), nil).Keys()

	assert.Len(t, keys, 17)
	assert.Contains(t, keys, "geo.collection")
	assert.True(t, keys[0] < keys[len(keys)-1])
}

func TestSettingsService_Validate(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.Validate()
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Contains(t, err.Error(), "firestore.project_id")

	require.NoError(t, service.Set("firestore.project_id", "jelly-prod"))
	assert.NoError(t, service.Validate())
}

func TestSettingsService_StoreFailure(t *testing.T) {
	store := memory.NewConfigStore()
	store.FailSets(assert.AnError)
	service := NewSettingsService(store, nil)

	err := service.Set("nats.url", "nats://localhost:4222")
	assert.ErrorIs(t, err, assert.AnError)

	defaults := service.GetDefaults()
	err = service.Save(&defaults)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "save firestore.project_id")
}
