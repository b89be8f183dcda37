package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jelly-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

func seedJellies(t *testing.T, store *memory.JellyStore) {
	t.Helper()
	validator := NewRecordValidator()
	for _, raw := range []domain.RawRecord{
		beachCleanup("a1"),
		withTags(beachCleanup("b2"), "music"),
	} {
		jelly, err := validator.Validate(raw)
		require.NoError(t, err)
		require.NoError(t, store.Create(context.Background(), jelly))
	}
}

func TestJellyService_ListAndGet(t *testing.T) {
	store := memory.NewJellyStore()
	seedJellies(t, store)
	service := NewJellyService(store)
	ctx := context.Background()

	all, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	jelly, err := service.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Beach Cleanup", jelly.Title)

	_, err = service.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestJellyService_ListByTag(t *testing.T) {
	store := memory.NewJellyStore()
	seedJellies(t, store)
	service := NewJellyService(store)

	tagged, err := service.ListByTag(context.Background(), "music")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "b2", tagged[0].ID)

	_, err = service.ListByTag(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestJellyService_ListInRegion(t *testing.T) {
	store := memory.NewJellyStore()
	seedJellies(t, store)
	service := NewJellyService(store)

	inside, err := service.ListInRegion(context.Background(), losAngeles())
	require.NoError(t, err)
	assert.Len(t, inside, 2)

	outside, err := service.ListInRegion(context.Background(), domain.NewRegion(51.5, -0.1, 1, 1))
	require.NoError(t, err)
	assert.Empty(t, outside)

	_, err = service.ListInRegion(context.Background(), domain.NewRegion(0, 0, 0, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestJellyService_Delete(t *testing.T) {
	store := memory.NewJellyStore()
	seedJellies(t, store)
	service := NewJellyService(store)
	ctx := context.Background()

	require.NoError(t, service.Delete(ctx, "a1"))
	assert.ErrorIs(t, service.Delete(ctx, "a1"), domain.ErrNotFound)
	assert.ErrorIs(t, service.Delete(ctx, ""), domain.ErrInvalidInput)
}
