package driven

import (
	"context"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// DocumentStore looks up raw jelly documents.
// Backed by Firestore in production.
type DocumentStore interface {
	// FetchWhere returns every document whose field equals value.
	// No matching document is an empty result, not an error.
	FetchWhere(ctx context.Context, field, value string) ([]domain.RawRecord, error)
}
