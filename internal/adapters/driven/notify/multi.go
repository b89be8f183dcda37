// Package notify combines notification sinks.
package notify

import (
	"context"
	"errors"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

// Ensure Multi implements the interface.
var _ driven.Notifier = Multi(nil)

// Multi delivers each event to every sink in order.
// One failing sink does not stop delivery to the rest.
type Multi []driven.Notifier

// Notify publishes to every sink and joins their errors.
func (m Multi) Notify(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (m Multi) Close() error {
	var errs []error
	for _, n := range m {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Notifier returns m, or nil when there are no sinks so callers can skip
// building events nobody receives.
func (m Multi) Notifier() driven.Notifier {
	if len(m) == 0 {
		return nil
	}
	return m
}
