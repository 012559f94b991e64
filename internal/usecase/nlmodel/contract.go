package nlmodel

import "context"

// Gateway manages natural-language search models on the engine.
type Gateway interface {
	CreateNLModel(ctx context.Context, cfg map[string]any) (map[string]any, error)
	ListNLModels(ctx context.Context) ([]map[string]any, error)
	GetNLModel(ctx context.Context, id string) (map[string]any, error)
	UpdateNLModel(ctx context.Context, id string, updates map[string]any) (map[string]any, error)
	DeleteNLModel(ctx context.Context, id string) (map[string]any, error)
}
