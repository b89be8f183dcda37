package driven

import (
	"context"
	"errors"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// GeoIndex answers "which keys are inside this region".
// The index algorithm is opaque to the core.
type GeoIndex interface {
	// Query starts observing a region.
	// Keys are streamed on the first channel. When the index has reported
	// every key currently in the region it sends QueryReady on the error
	// channel. Any other error means the query failed.
	// Both channels are closed when the query ends or ctx is cancelled.
	Query(ctx context.Context, region domain.Region) (<-chan domain.GeoKey, <-chan error)

	// RemoveAllObservers stops every active query started by this index.
	RemoveAllObservers()
}

// QueryReady is sent on the error channel when the index has reported
// every key currently in the region.
type QueryReady struct{}

// Error implements the error interface.
// This allows QueryReady to be sent on the error channel.
func (QueryReady) Error() string {
	return "query ready"
}

// IsQueryReady checks if an error is actually the ready signal.
func IsQueryReady(err error) bool {
	var qr QueryReady
	if errors.As(err, &qr) {
		return true
	}
	var qrp *QueryReady
	return errors.As(err, &qrp)
}
