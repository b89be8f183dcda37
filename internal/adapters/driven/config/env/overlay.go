// Package env overlays environment variables onto application settings.
//
// Set variables win over values from the config file. Unset or empty
// variables leave settings untouched.
package env

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// vars lists the recognised environment variables.
type vars struct {
	FirestoreProject string `env:"JELLY_FIRESTORE_PROJECT"`
	Credentials      string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	StorageEndpoint  string `env:"JELLY_STORAGE_ENDPOINT"`
	StorageBucket    string `env:"JELLY_STORAGE_BUCKET"`
	StorageAccessKey string `env:"JELLY_STORAGE_ACCESS_KEY"`
	StorageSecretKey string `env:"JELLY_STORAGE_SECRET_KEY"`
	NATSURL          string `env:"JELLY_NATS_URL"`
	DataDir          string `env:"JELLY_DATA_DIR"`
}

// Overlay applies the process environment to settings.
func Overlay(settings *domain.AppSettings) error {
	return overlay(settings, env.Options{})
}

// OverlayFrom applies an explicit environment instead of the process one.
func OverlayFrom(environ map[string]string) func(*domain.AppSettings) error {
	return func(settings *domain.AppSettings) error {
		return overlay(settings, env.Options{Environment: environ})
	}
}

func overlay(settings *domain.AppSettings, opts env.Options) error {
	var v vars
	if err := env.ParseWithOptions(&v, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	set(&settings.Firestore.ProjectID, v.FirestoreProject)
	set(&settings.Firestore.CredentialsFile, v.Credentials)
	set(&settings.Storage.Endpoint, v.StorageEndpoint)
	set(&settings.Storage.Bucket, v.StorageBucket)
	set(&settings.Storage.AccessKey, v.StorageAccessKey)
	set(&settings.Storage.SecretKey, v.StorageSecretKey)
	set(&settings.NATS.URL, v.NATSURL)
	set(&settings.DataDir, v.DataDir)
	return nil
}

func set(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
