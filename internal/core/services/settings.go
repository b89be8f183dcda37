package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyFirestoreProject     = "firestore.project_id"
	keyFirestoreCredentials = "firestore.credentials_file"
	keyFirestoreCollection  = "firestore.collection"
	keyGeoCollection        = "geo.collection"
	keyStorageEndpoint      = "storage.endpoint"
	keyStorageBucket        = "storage.bucket"
	keyStorageAccessKey     = "storage.access_key"
	keyStorageSecretKey     = "storage.secret_key"
	keyStorageRegion        = "storage.region"
	keyStorageUseSSL        = "storage.use_ssl"
	keyNATSURL              = "nats.url"
	keyNATSSubjectPrefix    = "nats.subject_prefix"
	keyMaxConcurrency       = "pipeline.max_concurrency"
	keyFetchRate            = "pipeline.fetch_rate"
	keyFetchRetries         = "pipeline.fetch_retries"
	keyImageMaxBytes        = "pipeline.image_max_bytes"
	keyImageCacheTTL        = "pipeline.image_cache_ttl"
)

// settingKind is how a key's value is stored.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

// settingKinds lists every supported key.
var settingKinds = map[string]settingKind{
	keyFirestoreProject:     kindString,
	keyFirestoreCredentials: kindString,
	keyFirestoreCollection:  kindString,
	keyGeoCollection:        kindString,
	keyStorageEndpoint:      kindString,
	keyStorageBucket:        kindString,
	keyStorageAccessKey:     kindString,
	keyStorageSecretKey:     kindString,
	keyStorageRegion:        kindString,
	keyStorageUseSSL:        kindBool,
	keyNATSURL:              kindString,
	keyNATSSubjectPrefix:    kindString,
	keyMaxConcurrency:       kindInt,
	keyFetchRate:            kindFloat,
	keyFetchRetries:         kindInt,
	keyImageMaxBytes:        kindInt,
	keyImageCacheTTL:        kindDuration,
}

// SettingsOverlay adjusts loaded settings, typically from the environment.
type SettingsOverlay func(settings *domain.AppSettings) error

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	overlay     SettingsOverlay
}

// NewSettingsService creates a new settings service.
// overlay may be nil.
func NewSettingsService(configStore driven.ConfigStore, overlay SettingsOverlay) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		overlay:     overlay,
	}
}

// Get retrieves current application settings: defaults, then the config
// file, then the overlay.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DataDir: d.DataDir,
		Firestore: domain.FirestoreSettings{
			ProjectID:       s.configStore.GetString(keyFirestoreProject),
			CredentialsFile: s.configStore.GetString(keyFirestoreCredentials),
			Collection:      s.getString(keyFirestoreCollection, d.Firestore.Collection),
			GeoCollection:   s.getString(keyGeoCollection, d.Firestore.GeoCollection),
		},
		Storage: domain.StorageSettings{
			Endpoint:  s.configStore.GetString(keyStorageEndpoint),
			Bucket:    s.configStore.GetString(keyStorageBucket),
			AccessKey: s.configStore.GetString(keyStorageAccessKey),
			SecretKey: s.configStore.GetString(keyStorageSecretKey),
			Region:    s.configStore.GetString(keyStorageRegion),
			UseSSL:    s.getBool(keyStorageUseSSL, d.Storage.UseSSL),
		},
		NATS: domain.NATSSettings{
			URL:           s.configStore.GetString(keyNATSURL),
			SubjectPrefix: s.getString(keyNATSSubjectPrefix, d.NATS.SubjectPrefix),
		},
		Pipeline: domain.PipelineSettings{
			MaxConcurrency: s.getNonNegativeInt(keyMaxConcurrency, d.Pipeline.MaxConcurrency),
			FetchRate:      s.getNonNegativeFloat(keyFetchRate, d.Pipeline.FetchRate),
			FetchRetries:   s.getNonNegativeInt(keyFetchRetries, d.Pipeline.FetchRetries),
			ImageMaxBytes:  int64(s.getPositiveInt(keyImageMaxBytes, int(d.Pipeline.ImageMaxBytes))),
			ImageCacheTTL:  s.getDuration(keyImageCacheTTL, d.Pipeline.ImageCacheTTL),
		},
	}

	if s.overlay != nil {
		if err := s.overlay(settings); err != nil {
			return nil, fmt.Errorf("apply settings overlay: %w", err)
		}
	}

	return settings, nil
}

// Save persists application settings. Empty secrets are not written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyFirestoreProject, settings.Firestore.ProjectID, false},
		{keyFirestoreCredentials, settings.Firestore.CredentialsFile, false},
		{keyFirestoreCollection, settings.Firestore.Collection, false},
		{keyGeoCollection, settings.Firestore.GeoCollection, false},
		{keyStorageEndpoint, settings.Storage.Endpoint, false},
		{keyStorageBucket, settings.Storage.Bucket, false},
		{keyStorageAccessKey, settings.Storage.AccessKey, settings.Storage.AccessKey == ""},
		{keyStorageSecretKey, settings.Storage.SecretKey, settings.Storage.SecretKey == ""},
		{keyStorageRegion, settings.Storage.Region, false},
		{keyStorageUseSSL, settings.Storage.UseSSL, false},
		{keyNATSURL, settings.NATS.URL, false},
		{keyNATSSubjectPrefix, settings.NATS.SubjectPrefix, false},
		{keyMaxConcurrency, settings.Pipeline.MaxConcurrency, false},
		{keyFetchRate, settings.Pipeline.FetchRate, false},
		{keyFetchRetries, settings.Pipeline.FetchRetries, false},
		{keyImageMaxBytes, settings.Pipeline.ImageMaxBytes, false},
		{keyImageCacheTTL, settings.Pipeline.ImageCacheTTL.String(), false},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value according to the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindString:
		parsed = value
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: %s must be a duration like 10m", domain.ErrInvalidInput, key)
		}
		parsed = d.String()
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the supported setting keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that a region load can run.
// The geo index and document store are required; blob storage and NATS
// are optional.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.Firestore.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: %s is not set", domain.ErrNotConfigured, keyFirestoreProject))
	}
	if settings.Firestore.Collection == "" {
		errs = append(errs, fmt.Errorf("%w: %s is empty", domain.ErrNotConfigured, keyFirestoreCollection))
	}
	if settings.Firestore.GeoCollection == "" {
		errs = append(errs, fmt.Errorf("%w: %s is empty", domain.ErrNotConfigured, keyGeoCollection))
	}
	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); exists {
		return s.configStore.GetBool(key)
	}
	return defaultVal
}

func (s *SettingsService) getNonNegativeInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	if n := s.configStore.GetInt(key); n >= 0 {
		return n
	}
	return defaultVal
}

func (s *SettingsService) getPositiveInt(key string, defaultVal int) int {
	if n := s.configStore.GetInt(key); n > 0 {
		return n
	}
	return defaultVal
}

func (s *SettingsService) getNonNegativeFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	if f := s.configStore.GetFloat(key); f >= 0 {
		return f
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if d := s.configStore.GetDuration(key); d > 0 {
		return d
	}
	return defaultVal
}
