package firestore

import (
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/genproto/googleapis/type/latlng"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// toRecord converts a document's native fields into a RawRecord.
func toRecord(data map[string]any) domain.RawRecord {
	rec := make(domain.RawRecord, len(data))
	for field, v := range data {
		rec[field] = toValue(v)
	}
	return rec
}

// toValue maps one native Firestore value onto the Value variants.
// Values the pipeline does not model become Unsupported so validation can
// name them.
func toValue(v any) domain.Value {
	switch x := v.(type) {
	case nil:
		return domain.NullValue()
	case string:
		return domain.StringValue(x)
	case int64:
		return domain.NumberValue(float64(x))
	case int:
		return domain.NumberValue(float64(x))
	case float64:
		return domain.NumberValue(x)
	case bool:
		return domain.BoolValue(x)
	case time.Time:
		return domain.TimestampValue(x)
	case *latlng.LatLng:
		if x == nil {
			return domain.NullValue()
		}
		return domain.GeoPointValue(x.GetLatitude(), x.GetLongitude())
	case []string:
		return domain.StringListValue(x)
	case []any:
		items := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return domain.UnsupportedValue(fmt.Sprintf("array of %T", item))
			}
			items = append(items, s)
		}
		return domain.StringListValue(items)
	case map[string]any:
		return domain.UnsupportedValue("map")
	case []byte:
		return domain.UnsupportedValue("bytes")
	case *firestore.DocumentRef:
		return domain.UnsupportedValue("reference")
	default:
		return domain.UnsupportedValue(fmt.Sprintf("%T", v))
	}
}

// toPoint reads a GeoFire location field.
func toPoint(v any) (domain.GeoPoint, bool) {
	switch x := v.(type) {
	case *latlng.LatLng:
		if x == nil {
			return domain.GeoPoint{}, false
		}
		return domain.GeoPoint{Latitude: x.GetLatitude(), Longitude: x.GetLongitude()}, true
	case []any:
		if len(x) != 2 {
			return domain.GeoPoint{}, false
		}
		lat, ok1 := toFloat(x[0])
		lng, ok2 := toFloat(x[1])
		if !ok1 || !ok2 {
			return domain.GeoPoint{}, false
		}
		return domain.GeoPoint{Latitude: lat, Longitude: lng}, true
	default:
		return domain.GeoPoint{}, false
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
