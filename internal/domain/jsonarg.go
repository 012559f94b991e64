package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// DecodeObject parses a caller-supplied JSON object argument. Failures are
// validation errors naming the argument.
func DecodeObject(arg, raw string) (map[string]any, error) {
	var out map[string]any
	if err := decodeArg(raw, &out); err != nil {
		return nil, NewValidationError("%s must be a JSON object: %v", arg, err)
	}
	if out == nil {
		return nil, NewValidationError("%s must be a JSON object", arg)
	}
	return out, nil
}

// DecodeObjects parses a caller-supplied JSON array of objects.
func DecodeObjects(arg, raw string) ([]map[string]any, error) {
	var out []map[string]any
	if err := decodeArg(raw, &out); err != nil {
		return nil, NewValidationError("%s must be a JSON array of objects: %v", arg, err)
	}
	if out == nil {
		return nil, NewValidationError("%s must be a JSON array of objects", arg)
	}
	return out, nil
}

// decodeArg keeps numbers as json.Number so ids and counts are forwarded unchanged.
func decodeArg(raw string, out any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err //nolint:wrapcheck // wrapped by the caller with the argument name
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

var errTrailingData = errors.New("unexpected data after JSON value")
