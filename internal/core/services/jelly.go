package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driving"
)

// Ensure JellyService implements the interface.
var _ driving.JellyService = (*JellyService)(nil)

// JellyService provides read access to persisted jellies.
type JellyService struct {
	store driven.JellyStore
}

// NewJellyService creates a new jelly service.
func NewJellyService(store driven.JellyStore) *JellyService {
	return &JellyService{store: store}
}

// List returns every stored jelly.
func (s *JellyService) List(ctx context.Context) ([]domain.Jelly, error) {
	jellies, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jellies: %w", err)
	}
	return jellies, nil
}

// ListInRegion returns stored jellies inside a region.
func (s *JellyService) ListInRegion(ctx context.Context, region domain.Region) ([]domain.Jelly, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}
	jellies, err := s.store.ListInRegion(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("list jellies in %s: %w", region, err)
	}
	return jellies, nil
}

// ListByTag returns stored jellies carrying tag.
func (s *JellyService) ListByTag(ctx context.Context, tag string) ([]domain.Jelly, error) {
	if tag == "" {
		return nil, fmt.Errorf("%w: tag is required", domain.ErrInvalidInput)
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var tagged []domain.Jelly
	for i := range all {
		if all[i].HasTag(tag) {
			tagged = append(tagged, all[i])
		}
	}
	return tagged, nil
}

// Get retrieves a jelly with its images.
func (s *JellyService) Get(ctx context.Context, id string) (*domain.Jelly, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// Delete removes a jelly.
func (s *JellyService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}
