package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/filter"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/params"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/result"
)

// ChunkSearchOptions tune a hybrid chunk search.
type ChunkSearchOptions struct {
	FilterBy       string
	PerPage        int
	Alpha          *float64
	EmbeddingField string
	// Rerank defaults to true.
	Rerank *bool
	// GroupByDoc groups chunks by source document, returning the top
	// GroupLimit chunks of each instead of one flat list.
	GroupByDoc    string
	GroupLimit    int
	IncludeFields string
	ExcludeFields string
}

// HybridChunks searches the chunk collection directly with hybrid ranking.
// It is a single query with no join.
func (s *Service) HybridChunks(
	ctx context.Context, chunkCollection, query, queryBy string, opts ChunkSearchOptions,
) (result.Shaped, error) {
	if strings.TrimSpace(chunkCollection) == "" {
		return result.Shaped{}, domain.NewValidationError("chunk collection is required")
	}

	rerank := true
	if opts.Rerank != nil {
		rerank = *opts.Rerank
	}
	perPage := opts.PerPage
	if perPage == 0 {
		perPage = DefaultChunkSearchPerPage
	}
	groupLimit := opts.GroupLimit
	if groupLimit <= 0 {
		groupLimit = DefaultChunkGroupLimit
	}
	embeddingField := opts.EmbeddingField
	if embeddingField == "" {
		embeddingField = s.embeddingField
	}

	p, err := params.Build(params.Intent{
		Query:          query,
		QueryBy:        queryBy,
		FilterBy:       filter.Expression(opts.FilterBy),
		PerPage:        perPage,
		Alpha:          opts.Alpha,
		EmbeddingField: embeddingField,
		Rerank:         &rerank,
		GroupBy:        opts.GroupByDoc,
		GroupLimit:     groupLimit,
		IncludeFields:  opts.IncludeFields,
		ExcludeFields:  opts.ExcludeFields,
	})
	if err != nil {
		return result.Shaped{}, err
	}

	raw, err := s.search.Search(ctx, chunkCollection, p)
	if err != nil {
		return result.Shaped{}, fmt.Errorf("search chunks %s: %w", chunkCollection, err)
	}
	shaped, err := result.Format(raw)
	if err != nil {
		return result.Shaped{}, fmt.Errorf("chunk response: %w", err)
	}
	return shaped, nil
}

// DocumentChunksOptions tune DocumentChunks.
type DocumentChunksOptions struct {
	// LinkField defaults to doc_id.
	LinkField     string
	SortBy        string
	FilterBy      string
	PerPage       int
	IncludeFields string
	ExcludeFields string
}

// DocumentChunks is every chunk of one source document.
type DocumentChunks struct {
	DocID      string           `json:"doc_id"`
	ChunkCount int              `json:"chunk_count"`
	TotalFound int              `json:"total_found"`
	Truncated  bool             `json:"truncated"`
	Chunks     []map[string]any `json:"chunks"`
}

// DocumentChunks fetches the chunks linked to docID, bulk fields stripped.
func (s *Service) DocumentChunks(
	ctx context.Context, chunkCollection, docID string, opts DocumentChunksOptions,
) (DocumentChunks, error) {
	if strings.TrimSpace(chunkCollection) == "" {
		return DocumentChunks{}, domain.NewValidationError("chunk collection is required")
	}
	if strings.TrimSpace(docID) == "" {
		return DocumentChunks{}, domain.NewValidationError("doc_id is required")
	}
	if opts.LinkField == "" {
		opts.LinkField = DefaultLinkField
	}
	if opts.PerPage == 0 {
		opts.PerPage = DefaultDocumentChunksPerPage
	}

	p, err := params.Build(params.Intent{
		Query:         params.Wildcard,
		QueryBy:       opts.LinkField,
		FilterBy:      filter.And(filter.Eq(opts.LinkField, docID), filter.Expression(opts.FilterBy)),
		SortBy:        opts.SortBy,
		PerPage:       opts.PerPage,
		IncludeFields: opts.IncludeFields,
		ExcludeFields: opts.ExcludeFields,
	})
	if err != nil {
		return DocumentChunks{}, err
	}

	raw, err := s.search.Search(ctx, chunkCollection, p)
	if err != nil {
		return DocumentChunks{}, fmt.Errorf("search chunks %s: %w", chunkCollection, err)
	}
	hits, err := result.Hits(raw)
	if err != nil {
		return DocumentChunks{}, fmt.Errorf("chunk response: %w", err)
	}

	chunks := make([]map[string]any, 0, len(hits))
	for _, hit := range hits {
		doc, err := result.Document(hit)
		if err != nil {
			return DocumentChunks{}, fmt.Errorf("chunk response: %w", err)
		}
		chunks = append(chunks, result.StripBulkFields(doc))
	}

	found := result.Found(raw)
	return DocumentChunks{
		DocID:      docID,
		ChunkCount: len(chunks),
		TotalFound: found,
		Truncated:  found > len(chunks),
		Chunks:     chunks,
	}, nil
}
