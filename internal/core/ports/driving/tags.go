package driving

// TagService exposes the tags seen during the current region query.
type TagService interface {
	// Snapshot returns every tag sighting in arrival order, duplicates included.
	Snapshot() []string

	// Unique returns each known tag once, in first-sighting order.
	Unique() []string

	// Flags returns a copy of the per-tag flags.
	Flags() map[string]bool

	// IsKnown reports whether a tag has been seen.
	IsKnown(tag string) bool

	// SetFlag updates the flag for a known tag.
	SetFlag(tag string, value bool) error
}
