// Package rag joins a metadata collection with its chunk collection for
// retrieval-augmented generation.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/filter"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/params"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/result"
	"github.com/kailas-cloud/typesense-mcp/internal/logger"
	"github.com/kailas-cloud/typesense-mcp/internal/metrics"
)

// Defaults for RAG operations.
const (
	DefaultLinkField         = "doc_id"
	DefaultChunkContentField = "content"
	DefaultMetaPerPage       = 5
	MaxMetaPerPage           = 50
	DefaultChunksPerDoc      = 50

	DefaultChunkSearchPerPage = 20
	DefaultChunkGroupLimit    = 5

	DefaultDocumentChunksPerPage = 100
)

// Messages for empty join results. They are structured outcomes, not errors.
const (
	MsgNoMetadataHits = "No matching documents found in metadata collection."
	msgNoLinkField    = "Documents found but none have '%s' field."
)

// Service runs the metadata-to-chunks join and chunk-level searches.
type Service struct {
	search         Searcher
	embeddingField string
}

// New creates a RAG service. embeddingField is the default vector field for
// alpha-derived vector queries; it may be empty.
func New(search Searcher, embeddingField string) *Service {
	return &Service{search: search, embeddingField: embeddingField}
}

// RetrieveOptions tune a metadata-to-chunks retrieval.
type RetrieveOptions struct {
	// MetaQueryBy lists the metadata fields to search. Required unless query is "*".
	MetaQueryBy  string
	MetaFilterBy string
	// LinkField joins metadata records to chunks. Defaults to doc_id.
	LinkField string
	// ChunkContentField is the chunk text field. Defaults to content.
	ChunkContentField string
	// PerPage is the number of metadata documents, capped at MaxMetaPerPage.
	PerPage      int
	ChunksPerDoc int
	// IncludeMetadata defaults to true.
	IncludeMetadata *bool
	ChunksSortBy    string
	ChunksFilterBy  string
	ExcludeFields   string
}

// LinkedDocument is one metadata document joined with its chunks.
type LinkedDocument struct {
	DocID      string           `json:"doc_id"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
	Chunks     []map[string]any `json:"chunks"`
	ChunkCount int              `json:"chunk_count"`
}

// Retrieval is the outcome of Retrieve.
type Retrieval struct {
	Found       int `json:"found"`
	TotalChunks int `json:"total_chunks"`
	// Truncated is set when the chunk query matched more chunks than it returned.
	Truncated bool             `json:"truncated"`
	Message   string           `json:"message,omitempty"`
	Results   []LinkedDocument `json:"results"`
}

// Retrieve searches the metadata collection, then fetches the chunks of every
// matched document with one filtered chunk query. Every linked id appears
// once in the output, in metadata hit order, even when it has no chunks.
func (s *Service) Retrieve(
	ctx context.Context, metaCollection, chunkCollection, query string, opts RetrieveOptions,
) (Retrieval, error) {
	if strings.TrimSpace(metaCollection) == "" || strings.TrimSpace(chunkCollection) == "" {
		return Retrieval{}, domain.NewValidationError("metadata and chunk collections are required")
	}
	opts = opts.withDefaults()
	log := logger.FromContext(ctx)

	metaParams, err := params.Build(params.Intent{
		Query:    query,
		QueryBy:  opts.MetaQueryBy,
		FilterBy: filter.Expression(opts.MetaFilterBy),
		PerPage:  min(opts.PerPage, MaxMetaPerPage),
	})
	if err != nil {
		return Retrieval{}, err
	}

	metaRaw, err := s.search.Search(ctx, metaCollection, metaParams)
	if err != nil {
		return Retrieval{}, fmt.Errorf("search metadata %s: %w", metaCollection, err)
	}
	metaHits, err := result.Hits(metaRaw)
	if err != nil {
		return Retrieval{}, fmt.Errorf("metadata response: %w", err)
	}
	if len(metaHits) == 0 {
		return Retrieval{Message: MsgNoMetadataHits, Results: []LinkedDocument{}}, nil
	}

	ids, metadata, err := collectLinks(metaHits, opts.LinkField, *opts.IncludeMetadata)
	if err != nil {
		return Retrieval{}, fmt.Errorf("metadata response: %w", err)
	}
	if len(ids) == 0 {
		return Retrieval{
			Found:   len(metaHits),
			Message: fmt.Sprintf(msgNoLinkField, opts.LinkField),
			Results: []LinkedDocument{},
		}, nil
	}

	chunkParams, err := params.Build(params.Intent{
		Query:         params.Wildcard,
		QueryBy:       opts.ChunkContentField,
		FilterBy:      filter.And(filter.In(opts.LinkField, ids), filter.Expression(opts.ChunksFilterBy)),
		SortBy:        opts.ChunksSortBy,
		ExcludeFields: opts.ExcludeFields,
		PerPage:       min(opts.ChunksPerDoc, params.MaxPerPage) * len(ids),
	})
	if err != nil {
		return Retrieval{}, err
	}

	chunkRaw, err := s.search.Search(ctx, chunkCollection, chunkParams)
	if err != nil {
		return Retrieval{}, fmt.Errorf("search chunks %s: %w", chunkCollection, err)
	}
	chunkHits, err := result.Hits(chunkRaw)
	if err != nil {
		return Retrieval{}, fmt.Errorf("chunk response: %w", err)
	}

	byID := make(map[string][]map[string]any, len(ids))
	for _, id := range ids {
		byID[id] = []map[string]any{}
	}
	for _, hit := range chunkHits {
		doc, err := result.Document(hit)
		if err != nil {
			return Retrieval{}, fmt.Errorf("chunk response: %w", err)
		}
		id, ok := linkValue(doc[opts.LinkField])
		if !ok {
			continue
		}
		if chunks, seen := byID[id]; seen {
			byID[id] = append(chunks, result.StripBulkFields(doc))
		}
	}

	out := Retrieval{Results: make([]LinkedDocument, 0, len(ids))}
	for _, id := range ids {
		entry := LinkedDocument{DocID: id, Chunks: byID[id], ChunkCount: len(byID[id])}
		if md, ok := metadata[id]; ok {
			entry.Metadata = md
		}
		out.TotalChunks += entry.ChunkCount
		out.Results = append(out.Results, entry)
	}
	out.Found = len(out.Results)

	if chunkFound := result.Found(chunkRaw); chunkFound > len(chunkHits) {
		out.Truncated = true
		metrics.RAGChunksTruncatedTotal.Inc()
		log.Info("rag chunk results truncated",
			zap.String("chunk_collection", chunkCollection),
			zap.Int("chunks_found", chunkFound),
			zap.Int("chunks_returned", len(chunkHits)),
			zap.Int("linked_documents", len(ids)),
		)
	}
	return out, nil
}

func (o RetrieveOptions) withDefaults() RetrieveOptions {
	if o.LinkField == "" {
		o.LinkField = DefaultLinkField
	}
	if o.ChunkContentField == "" {
		o.ChunkContentField = DefaultChunkContentField
	}
	if o.PerPage == 0 {
		o.PerPage = DefaultMetaPerPage
	}
	if o.ChunksPerDoc <= 0 {
		o.ChunksPerDoc = DefaultChunksPerDoc
	}
	if o.IncludeMetadata == nil {
		include := true
		o.IncludeMetadata = &include
	}
	return o
}

// collectLinks extracts link ids in first-seen order without duplicates.
// Hits lacking the link field are skipped.
func collectLinks(
	hits []map[string]any, linkField string, includeMetadata bool,
) ([]string, map[string]map[string]any, error) {
	ids := make([]string, 0, len(hits))
	metadata := make(map[string]map[string]any)
	seen := make(map[string]struct{}, len(hits))

	for _, hit := range hits {
		doc, err := result.Document(hit)
		if err != nil {
			return nil, nil, err
		}
		id, ok := linkValue(doc[linkField])
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if includeMetadata {
			metadata[id] = result.StripBulkFields(doc)
		}
	}
	return ids, metadata, nil
}

// linkValue renders a link field value as the string used in the membership
// filter. A missing or null value reports false.
func linkValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprint(t), true
	}
}
