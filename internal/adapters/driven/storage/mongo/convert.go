package mongo

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

// ToDocument converts a record to an ordered BSON document.
func ToDocument(rec domain.Record) bson.D {
	doc := make(bson.D, len(rec))
	for i, f := range rec {
		doc[i] = bson.E{Key: f.Key, Value: toValue(f.Value)}
	}
	return doc
}

func toValue(v any) any {
	switch t := v.(type) {
	case domain.Record:
		return ToDocument(t)
	case []any:
		arr := make(bson.A, len(t))
		for i, item := range t {
			arr[i] = toValue(item)
		}
		return arr
	default:
		return v
	}
}

// FromDocument converts a decoded BSON document back to a record.
func FromDocument(doc bson.D) domain.Record {
	rec := make(domain.Record, len(doc))
	for i, e := range doc {
		rec[i] = domain.Field{Key: e.Key, Value: fromValue(e.Value)}
	}
	return rec
}

func fromValue(v any) any {
	switch t := v.(type) {
	case bson.D:
		return FromDocument(t)
	case bson.M:
		rec := make(domain.Record, 0, len(t))
		for k, item := range t {
			rec = append(rec, domain.Field{Key: k, Value: fromValue(item)})
		}
		return rec
	case bson.A:
		arr := make([]any, len(t))
		for i, item := range t {
			arr[i] = fromValue(item)
		}
		return arr
	case int32:
		return int64(t)
	case bson.ObjectID:
		return t.Hex()
	case bson.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}
