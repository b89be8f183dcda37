package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore looks up jelly documents in one collection.
type DocumentStore struct {
	collection *firestore.CollectionRef
}

// NewDocumentStore creates a store over the named collection.
func NewDocumentStore(client *firestore.Client, collection string) *DocumentStore {
	return &DocumentStore{collection: client.Collection(collection)}
}

// FetchWhere returns every document whose field equals value.
func (s *DocumentStore) FetchWhere(ctx context.Context, field, value string) ([]domain.RawRecord, error) {
	iter := s.collection.Where(field, "==", value).Documents(ctx)
	defer iter.Stop()

	var records []domain.RawRecord
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("querying %s == %q: %w", field, value, err)
		}
		records = append(records, toRecord(doc.Data()))
	}
	return records, nil
}
