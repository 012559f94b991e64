package typesense

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/typesense/typesense-go/v3/typesense/api"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/document"
)

// maxJSONLLine bounds one JSONL record; documents with embeddings are large.
const maxJSONLLine = 16 << 20

// GetDocument fetches a document by id.
func (c *Client) GetDocument(ctx context.Context, collection, id string) (map[string]any, error) {
	return object(ctx, c, OpGetDocument, func() (any, error) {
		return c.ts.Collection(collection).Document(id).Retrieve(ctx)
	})
}

// CreateDocument indexes a new document.
func (c *Client) CreateDocument(ctx context.Context, collection string, doc map[string]any) (map[string]any, error) {
	return object(ctx, c, OpCreateDocument, func() (any, error) {
		return c.ts.Collection(collection).Documents().Create(ctx, doc, &api.DocumentIndexParameters{})
	})
}

// UpsertDocument creates or replaces a document.
func (c *Client) UpsertDocument(ctx context.Context, collection string, doc map[string]any) (map[string]any, error) {
	return object(ctx, c, OpUpsertDocument, func() (any, error) {
		return c.ts.Collection(collection).Documents().Upsert(ctx, doc, &api.DocumentIndexParameters{})
	})
}

// UpdateDocument applies a partial update to an existing document.
func (c *Client) UpdateDocument(ctx context.Context, collection, id string, partial map[string]any) (map[string]any, error) {
	return object(ctx, c, OpUpdateDocument, func() (any, error) {
		return c.ts.Collection(collection).Document(id).Update(ctx, partial, &api.DocumentIndexParameters{})
	})
}

// DeleteDocument removes a document by id and returns it.
func (c *Client) DeleteDocument(ctx context.Context, collection, id string) (map[string]any, error) {
	return object(ctx, c, OpDeleteDocument, func() (any, error) {
		return c.ts.Collection(collection).Document(id).Delete(ctx)
	})
}

// DeleteByFilter removes every document matching filterBy, returning {"num_deleted": n}.
func (c *Client) DeleteByFilter(ctx context.Context, collection, filterBy string) (map[string]any, error) {
	return object(ctx, c, OpDeleteByFilter, func() (any, error) {
		n, err := send(ctx, map[string]any{"filter_by": filterBy}, c.ts.Collection(collection).Documents().Delete)
		if err != nil {
			return nil, err
		}
		return map[string]any{"num_deleted": n}, nil
	})
}

// Import sends documents with the given action and returns one status
// object per document, in input order.
func (c *Client) Import(ctx context.Context, collection string, docs []map[string]any, action document.Action) ([]map[string]any, error) {
	payload := make([]any, len(docs))
	for i, d := range docs {
		payload[i] = d
	}
	return list(ctx, c, OpImport, func() (any, error) {
		return sendWith(ctx, payload, map[string]any{"action": string(action)},
			c.ts.Collection(collection).Documents().Import)
	})
}

// Export streams the collection as JSONL. Records that fail to decode are
// counted but not returned.
func (c *Client) Export(ctx context.Context, collection string, opts document.ExportOptions) (document.ExportResult, error) {
	q := map[string]any{}
	if opts.FilterBy != "" {
		q["filter_by"] = opts.FilterBy
	}
	if opts.IncludeFields != "" {
		q["include_fields"] = opts.IncludeFields
	}
	if opts.ExcludeFields != "" {
		q["exclude_fields"] = opts.ExcludeFields
	}

	res := document.ExportResult{Documents: []map[string]any{}}
	err := c.call(ctx, OpExport, func() error {
		body, err := send(ctx, q, c.ts.Collection(collection).Documents().Export)
		if err != nil {
			return err
		}
		defer func() { _ = body.Close() }()

		return scanLines(body, func(line []byte) error {
			res.Total++
			if opts.Limit > 0 && res.Total > opts.Limit {
				return nil
			}
			var doc map[string]any
			if fromJSON(line, &doc) == nil {
				res.Documents = append(res.Documents, doc)
			}
			return nil
		})
	})
	if err != nil {
		return document.ExportResult{}, err
	}
	return res, nil
}

// scanLines calls fn for every non-blank line of a JSONL stream.
func scanLines(r io.Reader, fn func(line []byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxJSONLLine)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: read jsonl: %w", domain.ErrEngine, err)
	}
	return nil
}
