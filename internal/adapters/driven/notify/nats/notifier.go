// Package nats publishes pipeline events to a NATS server.
//
// Each event is published as JSON on "<prefix>.<event name>", for example
// "jelly.record-added". Subscribers treat the payload as a hint to
// re-query the jelly store.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
	"github.com/custodia-labs/jelly-cli/internal/logger"
)

// Ensure Notifier implements the interface.
var _ driven.Notifier = (*Notifier)(nil)

// conn is the subset of *nats.Conn the notifier uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// message is the wire form of a domain.Event.
type message struct {
	Event   string    `json:"event"`
	JellyID string    `json:"jelly_id"`
	Tags    []string  `json:"tags,omitempty"`
	At      time.Time `json:"at"`
}

// Notifier publishes events over one NATS connection.
type Notifier struct {
	conn   conn
	prefix string

	mu     sync.Mutex
	closed bool
}

// Connect dials the server named in settings.
func Connect(cfg domain.NATSSettings) (*Notifier, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("nats: %w", domain.ErrNotConfigured)
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("jelly-cli"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected: %v", err)
			}
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Warn("NATS error: %v", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats %s: %w", cfg.URL, err)
	}
	return newNotifier(nc, cfg.SubjectPrefix), nil
}

func newNotifier(c conn, prefix string) *Notifier {
	return &Notifier{conn: c, prefix: strings.Trim(prefix, ".")}
}

// Subject returns the subject an event name is published on.
func (n *Notifier) Subject(name domain.EventName) string {
	if n.prefix == "" {
		return name.String()
	}
	return n.prefix + "." + name.String()
}

// Notify publishes one event and flushes it to the server.
func (n *Notifier) Notify(ctx context.Context, event domain.Event) error {
	n.mu.Lock()
	closed := n.closed
	n.mu.Unlock()
	if closed {
		return domain.ErrNotifierClosed
	}

	data, err := json.Marshal(message{
		Event:   event.Name.String(),
		JellyID: event.JellyID,
		Tags:    event.Tags,
		At:      event.At,
	})
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	subject := n.Subject(event.Name)
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing %s: %w", subject, err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection. Later calls are no-ops.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return n.conn.Drain()
}
