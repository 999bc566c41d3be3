package api

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// jsonify converts BSON-specific values in a decoded document into values
// encoding/json renders naturally: dates become time.Time, object ids hex
// strings, documents and arrays are walked recursively.
func jsonify(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.M:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = jsonify(item)
		}
		return out
	case bson.D:
		out := make(map[string]interface{}, len(val))
		for _, e := range val {
			out[e.Key] = jsonify(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = jsonify(item)
		}
		return out
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.ObjectID:
		return val.Hex()
	case primitive.Timestamp:
		return val.T
	case primitive.Decimal128:
		return val.String()
	default:
		return v
	}
}
