package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// FetchHook runs before every lookup. Returning an error fails the lookup.
type FetchHook func(ctx context.Context, field, value string) error

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Documents are returned in insertion order.
type DocumentStore struct {
	mu    sync.RWMutex
	docs  []domain.RawRecord
	hook  FetchHook
	calls int
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

// Put adds a document. Several documents may share an id.
func (s *DocumentStore) Put(doc domain.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, copyRecord(doc))
}

// SetHook installs a hook called before every lookup.
func (s *DocumentStore) SetHook(hook FetchHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// Calls returns the number of lookups served.
func (s *DocumentStore) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// FetchWhere returns documents whose string field equals value.
func (s *DocumentStore) FetchWhere(ctx context.Context, field, value string) ([]domain.RawRecord, error) {
	s.mu.Lock()
	s.calls++
	hook := s.hook
	s.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, field, value); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.RawRecord
	for _, doc := range s.docs {
		v, ok := doc.Get(field)
		if !ok {
			continue
		}
		if str, isString := v.AsString(); isString && str == value {
			out = append(out, copyRecord(doc))
		}
	}
	return out, nil
}

func copyRecord(doc domain.RawRecord) domain.RawRecord {
	out := make(domain.RawRecord, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
