package driving

import (
	"context"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// JellyService provides read access to persisted jellies.
type JellyService interface {
	// List returns every stored jelly.
	List(ctx context.Context) ([]domain.Jelly, error)

	// ListInRegion returns stored jellies inside a region.
	ListInRegion(ctx context.Context, region domain.Region) ([]domain.Jelly, error)

	// ListByTag returns stored jellies carrying a tag.
	ListByTag(ctx context.Context, tag string) ([]domain.Jelly, error)

	// Get retrieves a jelly with its images.
	Get(ctx context.Context, id string) (*domain.Jelly, error)

	// Delete removes a jelly.
	Delete(ctx context.Context, id string) error
}
