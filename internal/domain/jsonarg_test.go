package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeObject(t *testing.T) {
	obj, err := DecodeObject("schema_json", `{"name":"books","num":9007199254740993}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["name"] != "books" {
		t.Errorf("unexpected name %v", obj["name"])
	}
	if n, ok := obj["num"].(json.Number); !ok || n.String() != "9007199254740993" {
		t.Errorf("large number not preserved: %v", obj["num"])
	}

	for _, bad := range []string{``, `null`, `[1]`, `{"a":`, `{} {}`} {
		if _, err := DecodeObject("schema_json", bad); !errors.Is(err, ErrValidation) {
			t.Errorf("%q: expected ErrValidation, got %v", bad, err)
		}
	}
}

func TestDecodeObjects(t *testing.T) {
	docs, err := DecodeObjects("documents_json", `[{"id":"1"},{"id":"2"}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 documents, got %d", len(docs))
	}

	if _, err := DecodeObjects("documents_json", `{"id":"1"}`); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestEngineError_Unwrap(t *testing.T) {
	err := NewEngineError(404, "Not Found")
	if !errors.Is(err, ErrEngine) || !errors.Is(err, ErrNotFound) {
		t.Errorf("404 must match ErrEngine and ErrNotFound: %v", err)
	}

	err = NewEngineError(400, "Bad filter")
	if errors.Is(err, ErrNotFound) {
		t.Error("400 must not match ErrNotFound")
	}
	if err.Error() != "search engine error (400): Bad filter" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
