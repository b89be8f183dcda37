package driven

import (
	"context"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// JellyStore persists normalised jellies.
// Backed by SQLite for local storage. Implementations must serialise writers.
type JellyStore interface {
	// Create stores a jelly, replacing any previous version with the same ID.
	// Images attached to the previous version are kept.
	Create(ctx context.Context, jelly *domain.Jelly) error

	// AppendImages attaches images to a stored jelly.
	// Images with a path already attached are replaced.
	AppendImages(ctx context.Context, jellyID string, images []domain.StorageItem) error

	// Get retrieves a jelly with its images.
	Get(ctx context.Context, id string) (*domain.Jelly, error)

	// List returns every stored jelly without image data.
	List(ctx context.Context) ([]domain.Jelly, error)

	// ListInRegion returns stored jellies inside region without image data.
	ListInRegion(ctx context.Context, region domain.Region) ([]domain.Jelly, error)

	// Delete removes a jelly and its images.
	Delete(ctx context.Context, id string) error
}
