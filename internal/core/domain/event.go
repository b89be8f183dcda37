package domain

import "time"

// EventName identifies a notification sent to the rendering layer.
type EventName string

const (
	// EventRecordAdded fires after a jelly is persisted.
	EventRecordAdded EventName = "record-added"

	// EventTagAdded fires once per persisted jelly after its tags are registered.
	EventTagAdded EventName = "tag-added"
)

// String returns the event name.
func (n EventName) String() string {
	return string(n)
}

// Event is a signal for listeners to re-query state.
// The payload is informational only.
type Event struct {
	// Name is the event type.
	Name EventName

	// JellyID is the jelly that triggered the event.
	JellyID string

	// Tags are the tags registered for tag-added events.
	Tags []string

	// At is when the event was raised.
	At time.Time
}

// NewEvent creates an event stamped with the current time.
func NewEvent(name EventName, jellyID string, tags []string) Event {
	return Event{
		Name:    name,
		JellyID: jellyID,
		Tags:    tags,
		At:      time.Now().UTC(),
	}
}
