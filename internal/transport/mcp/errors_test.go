package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
)

func TestToMCPError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantType   string
		wantStatus int
	}{
		{"validation", domain.NewValidationError("per_page must be an integer"), CodeInvalidParams, "validation_error", 0},
		{"engine 404", domain.NewEngineError(404, "Not Found"), CodeNotFound, "not_found", 404},
		{"engine 400", domain.NewEngineError(400, "bad filter"), CodeEngineError, "engine_error", 400},
		{"wrapped engine", fmt.Errorf("search books: %w", domain.NewEngineError(409, "exists")), CodeEngineError, "engine_error", 409},
		{"connectivity", fmt.Errorf("search: %w", domain.ErrConnectivity), CodeConnectivity, "connectivity_error", 0},
		{"rate limited", domain.ErrRateLimited, CodeRateLimited, "rate_limited", 0},
		{"unknown", errors.New("boom"), CodeInternalError, "internal_error", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toMCPError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.err.Error(), got.Message)
		})
	}
}

func TestToMCPError_PassesThrough(t *testing.T) {
	orig := &MCPError{Code: CodeInternalError, Type: "internal_error", Message: "encode"}
	assert.Same(t, orig, toMCPError(fmt.Errorf("wrap: %w", orig)))
}

func TestMCPError_JSON(t *testing.T) {
	e := &MCPError{Code: CodeNotFound, Type: "not_found", Message: "no such collection", Status: 404}

	var out map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(e.JSON()), &out))
	assert.EqualValues(t, CodeNotFound, out["error"]["code"])
	assert.Equal(t, "not_found", out["error"]["type"])
	assert.EqualValues(t, 404, out["error"]["status"])

	noStatus := (&MCPError{Code: CodeInvalidParams, Type: "validation_error", Message: "x"}).JSON()
	assert.NotContains(t, noStatus, "status")
}
