package rag

import (
	"context"

	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/params"
)

// Searcher runs a single search against the engine.
type Searcher interface {
	Search(ctx context.Context, collection string, p params.Params) (map[string]any, error)
}
