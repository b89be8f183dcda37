package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

// Ensure JellyStore implements the interface.
var _ driven.JellyStore = (*JellyStore)(nil)

// JellyStore is an in-memory implementation of driven.JellyStore.
type JellyStore struct {
	mu      sync.RWMutex
	jellies map[string]domain.Jelly
	creates int
	failErr error
}

// NewJellyStore creates an empty store.
func NewJellyStore() *JellyStore {
	return &JellyStore{jellies: make(map[string]domain.Jelly)}
}

// FailWrites makes Create and AppendImages fail with err. Nil restores writes.
func (s *JellyStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Creates returns the number of successful Create calls.
func (s *JellyStore) Creates() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creates
}

// Create stores a jelly, keeping images attached to a previous version.
func (s *JellyStore) Create(ctx context.Context, jelly *domain.Jelly) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}

	now := time.Now().UTC()
	stored := cloneJelly(*jelly)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if prev, ok := s.jellies[jelly.ID]; ok {
		stored.CreatedAt = prev.CreatedAt
		stored.Images = prev.Images
	}
	if stored.Images == nil {
		stored.Images = []domain.StorageItem{}
	}
	s.jellies[jelly.ID] = stored
	s.creates++
	return nil
}

// AppendImages attaches images, replacing any with the same path.
func (s *JellyStore) AppendImages(ctx context.Context, jellyID string, images []domain.StorageItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}

	jelly, ok := s.jellies[jellyID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, img := range images {
		item := domain.StorageItem{Path: img.Path, Data: append([]byte(nil), img.Data...)}
		replaced := false
		for i := range jelly.Images {
			if jelly.Images[i].Path == img.Path {
				jelly.Images[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			jelly.Images = append(jelly.Images, item)
		}
	}
	jelly.UpdatedAt = time.Now().UTC()
	s.jellies[jellyID] = jelly
	return nil
}

// Get retrieves a jelly with its images.
func (s *JellyStore) Get(_ context.Context, id string) (*domain.Jelly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jelly, ok := s.jellies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneJelly(jelly)
	return &out, nil
}

// List returns every jelly ordered by start time, without image data.
func (s *JellyStore) List(_ context.Context) ([]domain.Jelly, error) {
	return s.filter(func(domain.Jelly) bool { return true }), nil
}

// ListInRegion returns jellies inside region, without image data.
func (s *JellyStore) ListInRegion(_ context.Context, region domain.Region) ([]domain.Jelly, error) {
	return s.filter(func(j domain.Jelly) bool {
		return region.Contains(j.Latitude, j.Longitude)
	}), nil
}

// Delete removes a jelly.
func (s *JellyStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jellies[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.jellies, id)
	return nil
}

func (s *JellyStore) filter(keep func(domain.Jelly) bool) []domain.Jelly {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Jelly, 0, len(s.jellies))
	for _, j := range s.jellies {
		if !keep(j) {
			continue
		}
		summary := cloneJelly(j)
		summary.Images = nil
		out = append(out, summary)
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].StartTime.Equal(out[k].StartTime) {
			return out[i].StartTime.Before(out[k].StartTime)
		}
		return out[i].ID < out[k].ID
	})
	return out
}

func cloneJelly(j domain.Jelly) domain.Jelly {
	j.Tags = append([]string(nil), j.Tags...)
	if j.Images != nil {
		images := make([]domain.StorageItem, len(j.Images))
		copy(images, j.Images)
		j.Images = images
	}
	return j
}
