package typesense

import (
	"context"
	"net/http"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/params"
)

// Search runs a single search against a collection.
func (c *Client) Search(ctx context.Context, collection string, p params.Params) (map[string]any, error) {
	return object(ctx, c, OpSearch, func() (any, error) {
		return send(ctx, p, c.ts.Collection(collection).Documents().Search)
	})
}

// MultiSearch runs several searches in one round trip. Common parameters
// apply to every search unless overridden. The returned responses mirror the
// order of searches.
func (c *Client) MultiSearch(ctx context.Context, searches []params.CollectionSearch, common params.Params) ([]map[string]any, error) {
	body := make([]map[string]any, len(searches))
	for i, s := range searches {
		entry := s.Params.Map()
		entry["collection"] = s.Collection
		body[i] = entry
	}

	var out struct {
		Results []map[string]any `json:"results"`
	}
	err := c.call(ctx, OpMultiSearch, func() error {
		res, err := perform(ctx, common, map[string]any{"searches": body}, c.ts.MultiSearch.Perform)
		if err != nil {
			return err
		}
		return fromAPI(res, &out)
	})
	if err != nil {
		return nil, err
	}
	if len(out.Results) != len(searches) {
		return nil, &Error{Op: OpMultiSearch, Err: domain.NewEngineError(http.StatusOK,
			"multi_search returned a different number of results than searches sent")}
	}
	return out.Results, nil
}

// perform fills the common parameter struct and the searches body of a
// multi-search call from plain JSON values.
func perform[P, S, R any](
	ctx context.Context, common, searches any, fn func(context.Context, *P, S) (R, error),
) (R, error) {
	var (
		cp   P
		body S
		zero R
	)
	if err := toAPI(common, &cp); err != nil {
		return zero, err
	}
	if err := toAPI(searches, &body); err != nil {
		return zero, err
	}
	return fn(ctx, &cp, body)
}
