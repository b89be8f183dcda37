package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// RecordValidator turns raw documents into jellies.
// Validation is all-or-nothing: the first missing or mistyped field
// rejects the whole record.
type RecordValidator struct{}

// NewRecordValidator creates a validator.
func NewRecordValidator() *RecordValidator {
	return &RecordValidator{}
}

// Validate checks the required fields in a fixed order and builds a Jelly.
// Failures are returned as *domain.ValidationError naming the raw field.
//
//nolint:gocyclo // One guard per required field, in order.
func (v *RecordValidator) Validate(raw domain.RawRecord) (*domain.Jelly, error) {
	idStr, err := requireString(raw, domain.FieldID)
	if err != nil {
		return nil, err
	}
	id, err := canonicalID(idStr)
	if err != nil {
		return nil, err
	}

	emoji, err := requireString(raw, domain.FieldEmoji)
	if err != nil {
		return nil, err
	}

	title, err := requireString(raw, domain.FieldName)
	if err != nil {
		return nil, err
	}

	tags, err := requireStringList(raw, domain.FieldTags)
	if err != nil {
		return nil, err
	}

	description, err := requireString(raw, domain.FieldDescription)
	if err != nil {
		return nil, err
	}

	start, err := requireTimestamp(raw, domain.FieldStartTime)
	if err != nil {
		return nil, err
	}

	end, err := requireTimestamp(raw, domain.FieldEndTime)
	if err != nil {
		return nil, err
	}

	referencePath, err := requireString(raw, domain.FieldReferencePath)
	if err != nil {
		return nil, err
	}

	point, err := requireGeoPoint(raw, domain.FieldGeoPoint)
	if err != nil {
		return nil, err
	}

	creatorName, err := requireString(raw, domain.FieldCreatorName)
	if err != nil {
		return nil, err
	}

	return &domain.Jelly{
		ID:            id,
		Emoji:         emoji,
		Title:         title,
		Tags:          tags,
		Description:   description,
		StartTime:     start.UTC(),
		EndTime:       end.UTC(),
		ReferencePath: referencePath,
		CreatorName:   creatorName,
		Latitude:      point.Latitude,
		Longitude:     point.Longitude,
		Images:        []domain.StorageItem{},
	}, nil
}

// canonicalID normalises UUID ids to their canonical lowercase form.
// Other non-empty ids are kept verbatim.
func canonicalID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &domain.ValidationError{
			Field:  domain.FieldID,
			Reason: domain.ReasonMalformed,
			Detail: "empty id",
		}
	}
	if id, err := uuid.Parse(trimmed); err == nil {
		return id.String(), nil
	}
	return trimmed, nil
}

// lookup returns a present, non-null value or a missing-field error.
func lookup(raw domain.RawRecord, field string) (domain.Value, error) {
	val, ok := raw.Get(field)
	if !ok || val.Kind() == domain.KindNull {
		return domain.Value{}, &domain.ValidationError{Field: field, Reason: domain.ReasonMissing}
	}
	return val, nil
}

func mistyped(field string, want domain.ValueKind, got domain.Value) error {
	return &domain.ValidationError{
		Field:  field,
		Reason: domain.ReasonMistyped,
		Detail: "want " + want.String() + ", got " + got.Describe(),
	}
}

func requireString(raw domain.RawRecord, field string) (string, error) {
	val, err := lookup(raw, field)
	if err != nil {
		return "", err
	}
	s, ok := val.AsString()
	if !ok {
		return "", mistyped(field, domain.KindString, val)
	}
	return s, nil
}

func requireStringList(raw domain.RawRecord, field string) ([]string, error) {
	val, err := lookup(raw, field)
	if err != nil {
		return nil, err
	}
	list, ok := val.AsStringList()
	if !ok {
		return nil, mistyped(field, domain.KindStringList, val)
	}
	return list, nil
}

func requireTimestamp(raw domain.RawRecord, field string) (time.Time, error) {
	val, err := lookup(raw, field)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := val.AsTimestamp()
	if !ok {
		return time.Time{}, mistyped(field, domain.KindTimestamp, val)
	}
	return t, nil
}

func requireGeoPoint(raw domain.RawRecord, field string) (domain.GeoPoint, error) {
	val, err := lookup(raw, field)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	p, ok := val.AsGeoPoint()
	if !ok {
		return domain.GeoPoint{}, mistyped(field, domain.KindGeoPoint, val)
	}
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return domain.GeoPoint{}, &domain.ValidationError{
			Field:  field,
			Reason: domain.ReasonMalformed,
			Detail: "coordinate out of range " + val.Describe(),
		}
	}
	return p, nil
}
