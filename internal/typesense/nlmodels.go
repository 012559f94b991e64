package typesense

import "context"

// CreateNLModel registers a natural-language search model.
func (c *Client) CreateNLModel(ctx context.Context, cfg map[string]any) (map[string]any, error) {
	return object(ctx, c, OpCreateNLModel, func() (any, error) {
		return send(ctx, cfg, c.ts.NLSearchModels().Create)
	})
}

// ListNLModels returns every registered model.
func (c *Client) ListNLModels(ctx context.Context) ([]map[string]any, error) {
	return list(ctx, c, OpListNLModels, func() (any, error) {
		return c.ts.NLSearchModels().Retrieve(ctx)
	})
}

// GetNLModel returns one model.
func (c *Client) GetNLModel(ctx context.Context, id string) (map[string]any, error) {
	return object(ctx, c, OpGetNLModel, func() (any, error) {
		return c.ts.NLSearchModel(id).Retrieve(ctx)
	})
}

// UpdateNLModel replaces fields of a model configuration.
func (c *Client) UpdateNLModel(ctx context.Context, id string, updates map[string]any) (map[string]any, error) {
	return object(ctx, c, OpUpdateNLModel, func() (any, error) {
		return send(ctx, updates, c.ts.NLSearchModel(id).Update)
	})
}

// DeleteNLModel removes a model.
func (c *Client) DeleteNLModel(ctx context.Context, id string) (map[string]any, error) {
	return object(ctx, c, OpDeleteNLModel, func() (any, error) {
		return c.ts.NLSearchModel(id).Delete(ctx)
	})
}
