package driven

import (
	"context"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// Notifier delivers events to the rendering layer.
type Notifier interface {
	// Notify publishes one event. Delivery failures are reported but
	// never undo the write that triggered the event.
	Notify(ctx context.Context, event domain.Event) error

	// Close releases resources.
	Close() error
}
