package domain

import (
	"fmt"
	"time"
)

// Raw field names as stored in the document store.
// The store calls the title "name"; it is renamed during validation.
const (
	FieldID            = "id"
	FieldEmoji         = "emoji"
	FieldName          = "name"
	FieldTags          = "tags"
	FieldDescription   = "description"
	FieldStartTime     = "startTime"
	FieldEndTime       = "endTime"
	FieldReferencePath = "referencePath"
	FieldGeoPoint      = "geopoint"
	FieldCreatorName   = "creatorName"
)

// RequiredFields lists the raw fields in the order they are validated.
func RequiredFields() []string {
	return []string{
		FieldID,
		FieldEmoji,
		FieldName,
		FieldTags,
		FieldDescription,
		FieldStartTime,
		FieldEndTime,
		FieldReferencePath,
		FieldGeoPoint,
		FieldCreatorName,
	}
}

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	// KindNull is an explicit null or absent value.
	KindNull ValueKind = iota

	// KindString is a UTF-8 string.
	KindString

	// KindNumber is an integer or floating point number.
	KindNumber

	// KindBool is a boolean.
	KindBool

	// KindTimestamp is an absolute instant.
	KindTimestamp

	// KindGeoPoint is a latitude/longitude pair.
	KindGeoPoint

	// KindStringList is a sequence of strings.
	KindStringList

	// KindUnsupported is any native store value the pipeline does not model.
	KindUnsupported
)

// String returns the kind name used in validation errors.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTimestamp:
		return "timestamp"
	case KindGeoPoint:
		return "geopoint"
	case KindStringList:
		return "string list"
	case KindUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// GeoPoint is a decimal-degree coordinate.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Value is a tagged variant holding one field of a RawRecord.
// The zero value is a null.
type Value struct {
	kind    ValueKind
	str     string
	num     float64
	boolean bool
	ts      time.Time
	point   GeoPoint
	list    []string
}

// NullValue returns an explicit null.
func NullValue() Value { return Value{kind: KindNull} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps a number.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, boolean: b} }

// TimestampValue wraps an instant.
func TimestampValue(t time.Time) Value { return Value{kind: KindTimestamp, ts: t} }

// GeoPointValue wraps a coordinate.
func GeoPointValue(lat, lng float64) Value {
	return Value{kind: KindGeoPoint, point: GeoPoint{Latitude: lat, Longitude: lng}}
}

// StringListValue wraps a sequence of strings. The slice is copied.
func StringListValue(items []string) Value {
	list := make([]string, len(items))
	copy(list, items)
	return Value{kind: KindStringList, list: list}
}

// UnsupportedValue records a native value the pipeline cannot use.
// The description ends up in validation errors.
func UnsupportedValue(description string) Value {
	return Value{kind: KindUnsupported, str: description}
}

// Kind returns the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// AsString returns the string variant.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the number variant.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsBool returns the boolean variant.
func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

// AsTimestamp returns the timestamp variant.
func (v Value) AsTimestamp() (time.Time, bool) {
	return v.ts, v.kind == KindTimestamp
}

// AsGeoPoint returns the coordinate variant.
func (v Value) AsGeoPoint() (GeoPoint, bool) {
	return v.point, v.kind == KindGeoPoint
}

// AsStringList returns a copy of the string list variant.
func (v Value) AsStringList() ([]string, bool) {
	if v.kind != KindStringList {
		return nil, false
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out, true
}

// Describe returns a short human-readable form for logs.
func (v Value) Describe() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindBool:
		return fmt.Sprintf("%t", v.boolean)
	case KindTimestamp:
		return v.ts.UTC().Format(time.RFC3339)
	case KindGeoPoint:
		return fmt.Sprintf("(%g,%g)", v.point.Latitude, v.point.Longitude)
	case KindStringList:
		return fmt.Sprintf("%q", v.list)
	case KindUnsupported:
		return "unsupported(" + v.str + ")"
	default:
		return "null"
	}
}

// RawRecord is the unvalidated field mapping returned by the document store
// for one document. It is consumed once by validation and then discarded.
type RawRecord map[string]Value

// Get returns the value for a field. Absent fields report false.
func (r RawRecord) Get(field string) (Value, bool) {
	v, ok := r[field]
	return v, ok
}
