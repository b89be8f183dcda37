package domain

import "time"

// DefaultImageMaxBytes is the per-image download cap (1 MiB).
const DefaultImageMaxBytes = 1 * 1024 * 1024

// FirestoreSettings configures the document store and geo index.
type FirestoreSettings struct {
	// ProjectID is the Google Cloud project.
	ProjectID string

	// CredentialsFile is a service account JSON file. Empty uses ambient credentials.
	CredentialsFile string

	// Collection holds the jelly documents.
	Collection string

	// GeoCollection holds the geohash index entries.
	GeoCollection string
}

// IsConfigured returns true if the Firestore adapters can be created.
func (f FirestoreSettings) IsConfigured() bool {
	return f.ProjectID != ""
}

// StorageSettings configures the S3-compatible blob store holding images.
type StorageSettings struct {
	// Endpoint is host[:port] or a URL.
	Endpoint string

	// Bucket holds all jelly images.
	Bucket string

	// AccessKey is the access key ID.
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// Region is the bucket region.
	Region string

	// UseSSL enables TLS.
	UseSSL bool
}

// IsConfigured returns true if the blob store can be created.
func (s StorageSettings) IsConfigured() bool {
	return s.Endpoint != "" && s.Bucket != "" && s.AccessKey != "" && s.SecretKey != ""
}

// NATSSettings configures the notification sink.
type NATSSettings struct {
	// URL of the NATS server. Empty disables NATS notifications.
	URL string

	// SubjectPrefix is prepended to event names.
	SubjectPrefix string
}

// IsConfigured returns true if NATS notifications are enabled.
func (n NATSSettings) IsConfigured() bool {
	return n.URL != ""
}

// PipelineSettings tunes the region pipeline.
type PipelineSettings struct {
	// MaxConcurrency caps in-flight key tasks. Zero means unbounded.
	MaxConcurrency int

	// FetchRate limits document lookups per second. Zero means unlimited.
	FetchRate float64

	// FetchRetries is the number of retries after a failed lookup.
	FetchRetries int

	// ImageMaxBytes caps each image download.
	ImageMaxBytes int64

	// ImageCacheTTL is how long downloaded images are reused.
	ImageCacheTTL time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir holds the SQLite database.
	DataDir string

	// Firestore holds document store settings.
	Firestore FirestoreSettings

	// Storage holds blob store settings.
	Storage StorageSettings

	// NATS holds notification settings.
	NATS NATSSettings

	// Pipeline holds pipeline tuning.
	Pipeline PipelineSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Remote adapters are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Firestore: FirestoreSettings{
			Collection:    "Jellies",
			GeoCollection: "JellyLocations",
		},
		Storage: StorageSettings{
			UseSSL: true,
		},
		NATS: NATSSettings{
			SubjectPrefix: "jelly",
		},
		Pipeline: PipelineSettings{
			MaxConcurrency: 0,
			FetchRate:      0,
			FetchRetries:   0,
			ImageMaxBytes:  DefaultImageMaxBytes,
			ImageCacheTTL:  10 * time.Minute,
		},
	}
}
