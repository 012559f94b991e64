package collection

import (
	"context"

	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/params"
)

// Gateway manages collection schemas on the engine.
type Gateway interface {
	ListCollections(ctx context.Context) ([]map[string]any, error)
	GetCollection(ctx context.Context, name string) (map[string]any, error)
	CreateCollection(ctx context.Context, schema map[string]any) (map[string]any, error)
	UpdateCollection(ctx context.Context, name string, update map[string]any) (map[string]any, error)
	DeleteCollection(ctx context.Context, name string) (map[string]any, error)
	Search(ctx context.Context, collection string, p params.Params) (map[string]any, error)
}
