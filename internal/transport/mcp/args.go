package mcp

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
)

// argReader reads typed tool arguments. The first failure is kept and
// returned by Err; later reads return zero values.
type argReader struct {
	raw map[string]any
	err error
}

func newArgReader(raw map[string]any) *argReader {
	if raw == nil {
		raw = map[string]any{}
	}
	return &argReader{raw: raw}
}

// Err returns the first argument error.
func (r *argReader) Err() error { return r.err }

func (r *argReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = domain.NewValidationError(format, args...)
	}
}

// String returns a string argument, "" when absent.
func (r *argReader) String(key string) string {
	v, ok := r.raw[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail("%s must be a string", key)
		return ""
	}
	return s
}

// Required returns a non-blank string argument.
func (r *argReader) Required(key string) string {
	s := r.String(key)
	if strings.TrimSpace(s) == "" {
		r.fail("%s is required", key)
	}
	return s
}

// StringDefault returns a string argument or def when absent or empty.
func (r *argReader) StringDefault(key, def string) string {
	if s := r.String(key); s != "" {
		return s
	}
	return def
}

// Int returns an integer argument or def when absent.
func (r *argReader) Int(key string, def int) int {
	v, ok := r.raw[key]
	if !ok || v == nil {
		return def
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) {
		r.fail("%s must be an integer", key)
		return def
	}
	if f < math.MinInt || f >= math.MaxInt {
		r.fail("%s is out of range", key)
		return def
	}
	return int(f)
}

// Float returns a number argument, nil when absent.
func (r *argReader) Float(key string) *float64 {
	v, ok := r.raw[key]
	if !ok || v == nil {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		r.fail("%s must be a number", key)
		return nil
	}
	return &f
}

// Bool returns a boolean argument, nil when absent.
func (r *argReader) Bool(key string) *bool {
	v, ok := r.raw[key]
	if !ok || v == nil {
		return nil
	}
	var b bool
	switch t := v.(type) {
	case bool:
		b = t
	case string:
		parsed, err := strconv.ParseBool(t)
		if err != nil {
			r.fail("%s must be a boolean", key)
			return nil
		}
		b = parsed
	default:
		r.fail("%s must be a boolean", key)
		return nil
	}
	return &b
}

// BoolDefault returns a boolean argument or def when absent.
func (r *argReader) BoolDefault(key string, def bool) bool {
	if b := r.Bool(key); b != nil {
		return *b
	}
	return def
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
