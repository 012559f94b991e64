package typesense

import (
	"context"
)

// Health asks the engine whether it is ready, e.g. {"ok": true}.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var ok bool
	err := c.call(ctx, OpHealth, func() error {
		var err error
		ok, err = c.ts.Health(ctx, c.timeout)
		return err
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"ok": ok}, nil
}

// ListCollections returns every collection schema.
func (c *Client) ListCollections(ctx context.Context) ([]map[string]any, error) {
	return list(ctx, c, OpListCollections, func() (any, error) {
		return c.ts.Collections().Retrieve(ctx)
	})
}

// GetCollection returns one collection schema.
func (c *Client) GetCollection(ctx context.Context, name string) (map[string]any, error) {
	return object(ctx, c, OpGetCollection, func() (any, error) {
		return c.ts.Collection(name).Retrieve(ctx)
	})
}

// CreateCollection creates a collection from a schema.
func (c *Client) CreateCollection(ctx context.Context, schema map[string]any) (map[string]any, error) {
	return object(ctx, c, OpCreateCollection, func() (any, error) {
		return send(ctx, schema, c.ts.Collections().Create)
	})
}

// UpdateCollection alters a collection schema (adding or dropping fields).
func (c *Client) UpdateCollection(ctx context.Context, name string, update map[string]any) (map[string]any, error) {
	return object(ctx, c, OpUpdateCollection, func() (any, error) {
		return send(ctx, update, c.ts.Collection(name).Update)
	})
}

// DeleteCollection drops a collection and returns its last schema.
func (c *Client) DeleteCollection(ctx context.Context, name string) (map[string]any, error) {
	return object(ctx, c, OpDeleteCollection, func() (any, error) {
		return c.ts.Collection(name).Delete(ctx)
	})
}
