package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/filter"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/params"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/result"
)

// DefaultPerPage is the page size when the caller does not set one.
const DefaultPerPage = 10

// Service runs hybrid, keyword, natural-language and multi searches.
type Service struct {
	gw             Gateway
	embeddingField string
}

// New creates a search service. embeddingField is the server-wide default
// vector field for alpha-derived vector queries; it may be empty.
func New(gw Gateway, embeddingField string) *Service {
	return &Service{gw: gw, embeddingField: embeddingField}
}

// HybridOptions tune a hybrid search. Zero values mean "engine default".
type HybridOptions struct {
	FilterBy    string
	SortBy      string
	Page        int
	PerPage     int
	VectorQuery string
	Alpha       *float64
	// EmbeddingField overrides the vector field used when Alpha derives a vector query.
	EmbeddingField string
	// Rerank defaults to true.
	Rerank          *bool
	GroupBy         string
	GroupLimit      int
	FacetBy         string
	MaxFacetValues  int
	Prefix          string
	IncludeFields   string
	ExcludeFields   string
	HighlightFields string
}

// KeywordOptions tune a keyword-only search.
type KeywordOptions struct {
	FilterBy       string
	SortBy         string
	Page           int
	PerPage        int
	GroupBy        string
	GroupLimit     int
	FacetBy        string
	MaxFacetValues int
	IncludeFields  string
	ExcludeFields  string
}

// NLOptions tune a natural-language search.
type NLOptions struct {
	FilterBy       string
	SortBy         string
	Page           int
	PerPage        int
	Debug          bool
	PromptCacheTTL int
	FacetBy        string
	IncludeFields  string
	ExcludeFields  string
}

// Hybrid runs a keyword plus vector search with rank fusion.
func (s *Service) Hybrid(
	ctx context.Context, collection, query, queryBy string, opts HybridOptions,
) (result.Shaped, error) {
	rerank := true
	if opts.Rerank != nil {
		rerank = *opts.Rerank
	}
	embeddingField := opts.EmbeddingField
	if embeddingField == "" {
		embeddingField = s.embeddingField
	}

	return s.run(ctx, collection, params.Intent{
		Query:           query,
		QueryBy:         queryBy,
		FilterBy:        filter.Expression(opts.FilterBy),
		SortBy:          opts.SortBy,
		Page:            opts.Page,
		PerPage:         perPageOrDefault(opts.PerPage),
		VectorQuery:     opts.VectorQuery,
		Alpha:           opts.Alpha,
		EmbeddingField:  embeddingField,
		Rerank:          &rerank,
		GroupBy:         opts.GroupBy,
		GroupLimit:      opts.GroupLimit,
		FacetBy:         opts.FacetBy,
		MaxFacetValues:  opts.MaxFacetValues,
		Prefix:          opts.Prefix,
		IncludeFields:   opts.IncludeFields,
		ExcludeFields:   opts.ExcludeFields,
		HighlightFields: opts.HighlightFields,
	})
}

// Keyword runs a text-only search. No rerank parameter is sent.
func (s *Service) Keyword(
	ctx context.Context, collection, query, queryBy string, opts KeywordOptions,
) (result.Shaped, error) {
	return s.run(ctx, collection, params.Intent{
		Query:          query,
		QueryBy:        queryBy,
		FilterBy:       filter.Expression(opts.FilterBy),
		SortBy:         opts.SortBy,
		Page:           opts.Page,
		PerPage:        perPageOrDefault(opts.PerPage),
		GroupBy:        opts.GroupBy,
		GroupLimit:     opts.GroupLimit,
		FacetBy:        opts.FacetBy,
		MaxFacetValues: opts.MaxFacetValues,
		IncludeFields:  opts.IncludeFields,
		ExcludeFields:  opts.ExcludeFields,
	})
}

// NaturalLanguage lets the engine translate query into filters and sorts
// using the model registered as modelID.
func (s *Service) NaturalLanguage(
	ctx context.Context, collection, query, queryBy, modelID string, opts NLOptions,
) (result.Shaped, error) {
	if strings.TrimSpace(modelID) == "" {
		return result.Shaped{}, domain.NewValidationError("nl_model_id is required")
	}
	return s.run(ctx, collection, params.Intent{
		Query:            query,
		QueryBy:          queryBy,
		FilterBy:         filter.Expression(opts.FilterBy),
		SortBy:           opts.SortBy,
		Page:             opts.Page,
		PerPage:          perPageOrDefault(opts.PerPage),
		FacetBy:          opts.FacetBy,
		IncludeFields:    opts.IncludeFields,
		ExcludeFields:    opts.ExcludeFields,
		NLModelID:        modelID,
		NLQueryDebug:     opts.Debug,
		NLPromptCacheTTL: opts.PromptCacheTTL,
	})
}

func (s *Service) run(ctx context.Context, collection string, in params.Intent) (result.Shaped, error) {
	if strings.TrimSpace(collection) == "" {
		return result.Shaped{}, domain.NewValidationError("collection name is required")
	}
	p, err := params.Build(in)
	if err != nil {
		return result.Shaped{}, err
	}

	raw, err := s.gw.Search(ctx, collection, p)
	if err != nil {
		return result.Shaped{}, fmt.Errorf("search %s: %w", collection, err)
	}

	shaped, err := result.Format(raw)
	if err != nil {
		return result.Shaped{}, fmt.Errorf("format %s: %w", collection, err)
	}
	return shaped, nil
}

// CommonParams apply to every search of a multi-search. Zero values are not sent.
type CommonParams struct {
	QueryBy  string
	FilterBy string
	// PerPage is forwarded only when it differs from DefaultPerPage.
	PerPage int
}

// MultiResult is one entry of a multi-search response.
type MultiResult struct {
	SearchIndex int
	Shaped      result.Shaped
	// Error carries a per-search engine error; Shaped is empty when set.
	Error string
	Code  int
}

// MarshalJSON flattens the shaped result next to search_index.
func (m MultiResult) MarshalJSON() ([]byte, error) {
	out := map[string]any{"search_index": m.SearchIndex}
	if m.Error != "" {
		out["error"] = m.Error
		if m.Code != 0 {
			out["code"] = m.Code
		}
	} else {
		for k, v := range m.Shaped.Map() {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// Multi runs several searches in one round trip. searchesJSON is a JSON array
// of parameter objects, each with a "collection" key. Results keep request order.
func (s *Service) Multi(ctx context.Context, searchesJSON string, common CommonParams) ([]MultiResult, error) {
	searches, err := parseSearches(searchesJSON)
	if err != nil {
		return nil, err
	}

	commonRaw := map[string]any{}
	if common.QueryBy != "" {
		commonRaw[params.KeyQueryBy] = common.QueryBy
	}
	if common.FilterBy != "" {
		commonRaw[params.KeyFilterBy] = common.FilterBy
	}
	if common.PerPage != 0 && common.PerPage != DefaultPerPage {
		commonRaw[params.KeyPerPage] = common.PerPage
	}
	cp, err := params.FromMap(commonRaw)
	if err != nil {
		return nil, err
	}

	raws, err := s.gw.MultiSearch(ctx, searches, cp)
	if err != nil {
		return nil, fmt.Errorf("multi search: %w", err)
	}

	out := make([]MultiResult, 0, len(raws))
	for i, raw := range raws {
		entry := MultiResult{SearchIndex: i}
		if msg, ok := raw["error"].(string); ok && msg != "" {
			entry.Error = msg
			entry.Code = codeOf(raw["code"])
			out = append(out, entry)
			continue
		}
		shaped, err := result.Format(raw)
		if err != nil {
			return nil, fmt.Errorf("format search %d: %w", i, err)
		}
		entry.Shaped = shaped
		out = append(out, entry)
	}
	return out, nil
}

// parseSearches decodes and validates the multi-search payload before any
// engine call is made.
func parseSearches(searchesJSON string) ([]params.CollectionSearch, error) {
	raw, err := domain.DecodeObjects("searches", searchesJSON)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.NewValidationError("searches must not be empty")
	}

	out := make([]params.CollectionSearch, 0, len(raw))
	for i, entry := range raw {
		coll, _ := entry["collection"].(string)
		if strings.TrimSpace(coll) == "" {
			return nil, domain.NewValidationError("search %d: collection is required", i)
		}
		delete(entry, "collection")
		p, err := params.FromMap(entry)
		if err != nil {
			return nil, fmt.Errorf("search %d: %w", i, err)
		}
		out = append(out, params.CollectionSearch{Collection: coll, Params: p})
	}
	return out, nil
}

func perPageOrDefault(n int) int {
	if n == 0 {
		return DefaultPerPage
	}
	return n
}

func codeOf(v any) int {
	switch t := v.(type) {
	case json.Number:
		n, _ := t.Int64()
		return int(n)
	case float64:
		return int(t)
	case int:
		return t
	default:
		return 0
	}
}
