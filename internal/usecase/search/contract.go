package search

import (
	"context"

	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/params"
)

// Gateway runs searches against the engine.
type Gateway interface {
	Search(ctx context.Context, collection string, p params.Params) (map[string]any, error)
	MultiSearch(ctx context.Context, searches []params.CollectionSearch, common params.Params) ([]map[string]any, error)
}
