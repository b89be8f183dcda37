package services

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driving"
)

// Ensure TagRegistry implements the interface.
var _ driving.TagService = (*TagRegistry)(nil)

// TagRegistry collects the tags seen during a region query.
// Every sighting is appended to an ordered sequence; the flag map holds each
// tag once. A repeat sighting never overwrites a flag set by the UI.
type TagRegistry struct {
	mu    sync.RWMutex
	tags  []string
	flags map[string]bool
	order []string
}

// NewTagRegistry creates an empty registry.
func NewTagRegistry() *TagRegistry {
	return &TagRegistry{
		flags: make(map[string]bool),
	}
}

// Reset clears all tags and flags.
func (r *TagRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = nil
	r.order = nil
	r.flags = make(map[string]bool)
}

// Add records one tag sighting.
func (r *TagRegistry) Add(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(tag)
}

// AddAll records the tags of one jelly under a single lock.
func (r *TagRegistry) AddAll(tags []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tag := range tags {
		r.add(tag)
	}
}

// add appends a sighting (caller must hold lock).
func (r *TagRegistry) add(tag string) {
	r.tags = append(r.tags, tag)
	if _, ok := r.flags[tag]; !ok {
		r.flags[tag] = false
		r.order = append(r.order, tag)
	}
}

// IsKnown reports whether a tag has been seen since the last reset.
func (r *TagRegistry) IsKnown(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.flags[tag]
	return ok
}

// Snapshot returns every sighting in arrival order.
func (r *TagRegistry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.tags))
	copy(out, r.tags)
	return out
}

// Unique returns each tag once, in first-sighting order.
func (r *TagRegistry) Unique() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Flags returns a copy of the flag map.
func (r *TagRegistry) Flags() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.flags))
	for k, v := range r.flags {
		out[k] = v
	}
	return out
}

// Flag returns the flag for a tag and whether the tag is known.
func (r *TagRegistry) Flag(tag string) (value, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok = r.flags[tag]
	return value, ok
}

// SetFlag updates the flag for a known tag.
func (r *TagRegistry) SetFlag(tag string, value bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flags[tag]; !ok {
		return fmt.Errorf("tag %q: %w", tag, domain.ErrNotFound)
	}
	r.flags[tag] = value
	return nil
}
