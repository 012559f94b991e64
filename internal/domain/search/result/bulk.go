package result

import "encoding/json"

// BulkArrayMinLen is the length from which an all-numeric array counts as a
// bulk payload (an embedding vector) and is elided from surfaced documents.
const BulkArrayMinLen = 50

// IsBulkNumeric reports whether v is an array of at least BulkArrayMinLen
// elements that are all numbers.
func IsBulkNumeric(v any) bool {
	switch t := v.(type) {
	case []float64:
		return len(t) >= BulkArrayMinLen
	case []float32:
		return len(t) >= BulkArrayMinLen
	case []int:
		return len(t) >= BulkArrayMinLen
	case []any:
		if len(t) < BulkArrayMinLen {
			return false
		}
		for _, e := range t {
			if !isNumber(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// StripBulkFields returns a copy of doc without bulk numeric arrays.
// The input map is not modified.
func StripBulkFields(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if IsBulkNumeric(v) {
			continue
		}
		out[k] = v
	}
	return out
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		return true
	default:
		return false
	}
}
