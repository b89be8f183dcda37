package driven

import (
	"context"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// BlobStore lists and downloads image blobs.
type BlobStore interface {
	// List returns every blob directly or indirectly under path.
	List(ctx context.Context, path string) ([]domain.ItemRef, error)

	// Download fetches one blob. Blobs larger than maxBytes fail with
	// domain.ErrImageTooLarge.
	Download(ctx context.Context, ref domain.ItemRef, maxBytes int64) ([]byte, error)
}
