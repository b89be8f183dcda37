package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu           sync.RWMutex
	blobs        map[string][]byte
	listErrs     map[string]error
	downloadErrs map[string]error
	downloads    int
}

// NewBlobStore creates an empty blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs:        make(map[string][]byte),
		listErrs:     make(map[string]error),
		downloadErrs: make(map[string]error),
	}
}

// Put stores a blob under its full object key.
func (s *BlobStore) Put(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[path] = append([]byte(nil), data...)
}

// FailList makes listings under prefix fail with err.
func (s *BlobStore) FailList(prefix string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErrs[prefix] = err
}

// FailDownload makes downloads of path fail with err.
func (s *BlobStore) FailDownload(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloadErrs[path] = err
}

// Downloads returns the number of download calls served.
func (s *BlobStore) Downloads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.downloads
}

// List returns every blob under path, sorted by key.
func (s *BlobStore) List(ctx context.Context, path string) ([]domain.ItemRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := strings.TrimSuffix(path, "/")
	if err, ok := s.listErrs[prefix]; ok {
		return nil, err
	}

	var refs []domain.ItemRef
	for key, data := range s.blobs {
		if strings.HasPrefix(key, prefix+"/") {
			refs = append(refs, domain.ItemRef{Path: key, Size: int64(len(data))})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs, nil
}

// Download returns a copy of one blob.
func (s *BlobStore) Download(ctx context.Context, ref domain.ItemRef, maxBytes int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads++

	if err, ok := s.downloadErrs[ref.Path]; ok {
		return nil, err
	}
	data, ok := s.blobs[ref.Path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref.Path, domain.ErrNotFound)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %d > %d bytes", domain.ErrImageTooLarge, len(data), maxBytes)
	}
	return append([]byte(nil), data...), nil
}
