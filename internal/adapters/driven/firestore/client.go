package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// NewClient opens a Firestore client for the configured project.
// An empty credentials file falls back to application default credentials.
func NewClient(ctx context.Context, cfg domain.FirestoreSettings) (*firestore.Client, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("firestore: %w", domain.ErrNotConfigured)
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return client, nil
}
