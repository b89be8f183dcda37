package domain

import "time"

// Jelly is a validated, geotagged entity ready for persistence and rendering.
// A Jelly only exists when every required raw field passed validation.
type Jelly struct {
	// ID is the trimmed document id, canonicalised when it parses as a UUID.
	ID string

	// Emoji is the glyph shown on the map annotation.
	Emoji string

	// Title is the display name (the store's "name" field).
	Title string

	// Tags are the entity's tags in store order.
	Tags []string

	// Description is free text shown in the detail view.
	Description string

	// StartTime is when the jelly begins.
	StartTime time.Time

	// EndTime is when the jelly ends.
	EndTime time.Time

	// ReferencePath is the blob storage prefix holding the jelly's images.
	ReferencePath string

	// CreatorName is the display name of the author.
	CreatorName string

	// Latitude in decimal degrees.
	Latitude float64

	// Longitude in decimal degrees.
	Longitude float64

	// Images are resolved asynchronously after the jelly is created.
	Images []StorageItem

	// CreatedAt is when the jelly was first persisted.
	CreatedAt time.Time

	// UpdatedAt is when the jelly was last written.
	UpdatedAt time.Time
}

// HasTag reports whether the jelly carries the given tag.
func (j *Jelly) HasTag(tag string) bool {
	for _, t := range j.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// StorageItem is a blob downloaded from storage.
type StorageItem struct {
	// Path is the full object key.
	Path string

	// Data is the blob content.
	Data []byte
}

// Size returns the blob length in bytes.
func (s StorageItem) Size() int {
	return len(s.Data)
}

// ItemRef addresses one blob returned by a storage listing.
type ItemRef struct {
	// Path is the full object key.
	Path string

	// Size is the size reported by the listing, or -1 when unknown.
	Size int64
}
