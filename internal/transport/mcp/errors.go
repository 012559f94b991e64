package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
)

// Tool error codes, in the JSON-RPC server-error range.
const (
	CodeInvalidParams = -32602
	CodeInternalError = -32603
	CodeEngineError   = -32001
	CodeConnectivity  = -32002
	CodeRateLimited   = -32003
	CodeNotFound      = -32004
)

// MCPError is the error payload returned in a failed tool result.
type MCPError struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	// Status is the engine's HTTP status for engine errors.
	Status int `json:"status,omitempty"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// JSON renders the error as the text content of a tool result.
func (e *MCPError) JSON() string {
	data, err := json.Marshal(map[string]any{"error": e})
	if err != nil {
		return e.Error()
	}
	return string(data)
}

// errorMapping is checked in order; ErrNotFound must precede ErrEngine
// because engine 404s match both.
var errorMappings = []struct {
	target error
	code   int
	kind   string
}{
	{domain.ErrValidation, CodeInvalidParams, "validation_error"},
	{domain.ErrNotFound, CodeNotFound, "not_found"},
	{domain.ErrRateLimited, CodeRateLimited, "rate_limited"},
	{domain.ErrConnectivity, CodeConnectivity, "connectivity_error"},
	{domain.ErrEngine, CodeEngineError, "engine_error"},
}

// toMCPError classifies err by its domain sentinel.
func toMCPError(err error) *MCPError {
	var mErr *MCPError
	if errors.As(err, &mErr) {
		return mErr
	}

	out := &MCPError{Code: CodeInternalError, Type: "internal_error", Message: err.Error()}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			out.Code, out.Type = m.code, m.kind
			break
		}
	}

	var engErr *domain.EngineError
	if errors.As(err, &engErr) {
		out.Status = engErr.Status
	}
	return out
}
