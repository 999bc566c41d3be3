package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// timeLayouts are tried in order; layouts without a zone are read as UTC.
var timeLayouts = []string{
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

func parseTime(s string) (time.Time, bool) {
	// cheap pre-check, most strings in the payload are not timestamps
	if len(s) < len("2006-01-02T15:04:05") || s[4] != '-' || s[10] != 'T' {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func decodeData(raw []byte) (bson.M, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: data is not a JSON object: %v", ErrInvalidMessage, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing content after data", ErrInvalidMessage)
	}
	return convertMap(data), nil
}

func convertMap(in map[string]interface{}) bson.M {
	out := make(bson.M, len(in))
	for k, v := range in {
		out[k] = convertValue(v)
	}
	return out
}

func convertValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return convertMap(val)
	case []interface{}:
		out := make(bson.A, len(val))
		for i, item := range val {
			out[i] = convertValue(item)
		}
		return out
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case string:
		if t, ok := parseTime(val); ok {
			return t
		}
		return val
	default:
		return val
	}
}
