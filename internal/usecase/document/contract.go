package document

import (
	"context"

	domdoc "github.com/kailas-cloud/typesense-mcp/internal/domain/document"
)

// Gateway reads and writes documents on the engine.
type Gateway interface {
	GetDocument(ctx context.Context, collection, id string) (map[string]any, error)
	CreateDocument(ctx context.Context, collection string, doc map[string]any) (map[string]any, error)
	UpsertDocument(ctx context.Context, collection string, doc map[string]any) (map[string]any, error)
	UpdateDocument(ctx context.Context, collection, id string, partial map[string]any) (map[string]any, error)
	DeleteDocument(ctx context.Context, collection, id string) (map[string]any, error)
	DeleteByFilter(ctx context.Context, collection, filterBy string) (map[string]any, error)
	Import(ctx context.Context, collection string, docs []map[string]any, action domdoc.Action) ([]map[string]any, error)
	Export(ctx context.Context, collection string, opts domdoc.ExportOptions) (domdoc.ExportResult, error)
}
