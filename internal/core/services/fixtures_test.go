package services

import (
	"time"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

var (
	fixtureStart = time.Date(2026, 7, 4, 16, 0, 0, 0, time.UTC)
	fixtureEnd   = fixtureStart.Add(2 * time.Hour)
)

// beachCleanup returns a fully valid raw document for id.
func beachCleanup(id string) domain.RawRecord {
	return domain.RawRecord{
		domain.FieldID:            domain.StringValue(id),
		domain.FieldEmoji:         domain.StringValue("🪼"),
		domain.FieldName:          domain.StringValue("Beach Cleanup"),
		domain.FieldTags:          domain.StringListValue([]string{"eco", "beach"}),
		domain.FieldDescription:   domain.StringValue("Bring gloves."),
		domain.FieldStartTime:     domain.TimestampValue(fixtureStart),
		domain.FieldEndTime:       domain.TimestampValue(fixtureEnd),
		domain.FieldReferencePath: domain.StringValue("images/" + id),
		domain.FieldGeoPoint:      domain.GeoPointValue(34.0, -118.2),
		domain.FieldCreatorName:   domain.StringValue("Sam"),
	}
}

// withTags returns a copy of raw with different tags.
func withTags(raw domain.RawRecord, tags ...string) domain.RawRecord {
	out := make(domain.RawRecord, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	out[domain.FieldTags] = domain.StringListValue(tags)
	return out
}

// without returns a copy of raw missing field.
func without(raw domain.RawRecord, field string) domain.RawRecord {
	out := make(domain.RawRecord, len(raw))
	for k, v := range raw {
		if k != field {
			out[k] = v
		}
	}
	return out
}

// losAngeles covers the fixture coordinate.
func losAngeles() domain.Region {
	return domain.NewRegion(34.0, -118.2, 0.5, 0.5)
}
