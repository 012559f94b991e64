package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/params"
)

// --- Mocks ---

type mockGateway struct {
	searchResp   map[string]any
	searchErr    error
	multiResp    []map[string]any
	multiErr     error
	searchCalls  int
	multiCalls   int
	lastColl     string
	lastParams   params.Params
	lastSearches []params.CollectionSearch
	lastCommon   params.Params
}

func (m *mockGateway) Search(_ context.Context, collection string, p params.Params) (map[string]any, error) {
	m.searchCalls++
	m.lastColl = collection
	m.lastParams = p
	if m.searchResp == nil && m.searchErr == nil {
		return map[string]any{"found": 0, "hits": []any{}}, nil
	}
	return m.searchResp, m.searchErr
}

func (m *mockGateway) MultiSearch(
	_ context.Context, searches []params.CollectionSearch, common params.Params,
) ([]map[string]any, error) {
	m.multiCalls++
	m.lastSearches = searches
	m.lastCommon = common
	return m.multiResp, m.multiErr
}

func ptr[T any](v T) *T { return &v }

// --- Tests ---

func TestHybrid_RerankDefaultsTrue(t *testing.T) {
	gw := &mockGateway{}
	svc := New(gw, "")

	if _, err := svc.Hybrid(context.Background(), "products", "shoes", "title", HybridOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.lastParams.Get(params.KeyRerankHybridMatches) != "true" {
		t.Errorf("expected rerank=true, got %q", gw.lastParams.Get(params.KeyRerankHybridMatches))
	}
	if gw.lastParams.PerPage() != DefaultPerPage {
		t.Errorf("expected per_page %d, got %d", DefaultPerPage, gw.lastParams.PerPage())
	}

	_, _ = svc.Hybrid(context.Background(), "products", "shoes", "title", HybridOptions{Rerank: ptr(false)})
	if gw.lastParams.Get(params.KeyRerankHybridMatches) != "false" {
		t.Errorf("explicit rerank=false not honoured")
	}
}

func TestHybrid_ConfiguredEmbeddingField(t *testing.T) {
	gw := &mockGateway{}
	svc := New(gw, "embedding")

	_, err := svc.Hybrid(context.Background(), "products", "shoes", "title,embedding",
		HybridOptions{Alpha: ptr(0.7), PerPage: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := gw.lastParams.Get(params.KeyVectorQuery); got != "embedding:([], k:50, alpha:0.7)" {
		t.Errorf("unexpected vector_query %q", got)
	}

	svc = New(gw, "")
	_, _ = svc.Hybrid(context.Background(), "products", "shoes", "title,embedding",
		HybridOptions{Alpha: ptr(0.7), PerPage: 10})
	if got := gw.lastParams.Get(params.KeyVectorQuery); got != "title:([], k:50, alpha:0.7)" {
		t.Errorf("first-field fallback expected, got %q", got)
	}
}

func TestKeyword_NoRerank(t *testing.T) {
	gw := &mockGateway{}
	svc := New(gw, "")

	_, err := svc.Keyword(context.Background(), "products", "shoes", "title",
		KeywordOptions{FacetBy: "brand", GroupBy: "category"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.lastParams.Get(params.KeyRerankHybridMatches) != "" {
		t.Error("keyword search must not send rerank_hybrid_matches")
	}
	if gw.lastParams.Get(params.KeyGroupLimit) != "3" || gw.lastParams.Get(params.KeyMaxFacetValues) != "10" {
		t.Errorf("expected paired defaults, got %v", gw.lastParams.Map())
	}
}

func TestNaturalLanguage_RequiresModel(t *testing.T) {
	gw := &mockGateway{}
	svc := New(gw, "")

	_, err := svc.NaturalLanguage(context.Background(), "cars", "red cars", "make", "", NLOptions{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if gw.searchCalls != 0 {
		t.Error("gateway must not be called on validation failure")
	}
}

func TestNaturalLanguage_PassesParsedQuery(t *testing.T) {
	gw := &mockGateway{searchResp: map[string]any{
		"found":           float64(2),
		"hits":            []any{},
		"parsed_nl_query": map[string]any{"generated_params": map[string]any{"filter_by": "color:=red"}},
	}}
	svc := New(gw, "")

	res, err := svc.NaturalLanguage(context.Background(), "cars", "red cars", "make", "gemini",
		NLOptions{Debug: true, PromptCacheTTL: 60})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ParsedNLQuery == nil {
		t.Error("expected parsed_nl_query to pass through")
	}
	if gw.lastParams.Get(params.KeyNLQuery) != "true" || gw.lastParams.Get(params.KeyNLQueryPromptCacheTTL) != "60" {
		t.Errorf("unexpected nl params %v", gw.lastParams.Map())
	}
}

func TestSearch_RequiresCollection(t *testing.T) {
	svc := New(&mockGateway{}, "")
	_, err := svc.Keyword(context.Background(), " ", "q", "title", KeywordOptions{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSearch_GatewayErrorPropagates(t *testing.T) {
	gw := &mockGateway{searchErr: domain.NewEngineError(404, "Not found.")}
	svc := New(gw, "")

	_, err := svc.Hybrid(context.Background(), "missing", "q", "title", HybridOptions{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var engErr *domain.EngineError
	if !errors.As(err, &engErr) || engErr.Message != "Not found." {
		t.Errorf("engine message lost: %v", err)
	}
}

func TestMulti_ParsesAndClamps(t *testing.T) {
	gw := &mockGateway{multiResp: []map[string]any{
		{"found": float64(1), "hits": []any{map[string]any{"document": map[string]any{"id": "1"}}}},
		{"error": "Could not find a field named `nope`.", "code": float64(404)},
	}}
	svc := New(gw, "")

	res, err := svc.Multi(context.Background(),
		`[{"collection":"a","q":"x","per_page":1000},{"collection":"b","q":"y","query_by":"nope"}]`,
		CommonParams{QueryBy: "title", PerPage: DefaultPerPage})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gw.lastSearches) != 2 || gw.lastSearches[0].Collection != "a" {
		t.Fatalf("unexpected searches %v", gw.lastSearches)
	}
	if gw.lastSearches[0].Params.PerPage() != params.MaxPerPage {
		t.Errorf("per_page not clamped: %d", gw.lastSearches[0].Params.PerPage())
	}
	if gw.lastSearches[0].Params.Get("collection") != "" {
		t.Error("collection must not be sent as a search parameter")
	}
	if gw.lastCommon.Get(params.KeyPerPage) != "" {
		t.Error("default common per_page must not be sent")
	}
	if gw.lastCommon.Get(params.KeyQueryBy) != "title" {
		t.Errorf("common query_by missing: %v", gw.lastCommon.Map())
	}

	if len(res) != 2 || res[0].SearchIndex != 0 || res[1].SearchIndex != 1 {
		t.Fatalf("results out of order: %+v", res)
	}
	if res[1].Error == "" || res[1].Code != 404 {
		t.Errorf("per-search error not surfaced: %+v", res[1])
	}

	data, err := json.Marshal(res[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var flat map[string]any
	_ = json.Unmarshal(data, &flat)
	if flat["search_index"] != float64(0) || flat["found"] != float64(1) {
		t.Errorf("unexpected flattened result %s", data)
	}
}

func TestMulti_ValidationBeforeGateway(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed json", `[{"collection":`},
		{"not an array", `{"collection":"a"}`},
		{"empty", `[]`},
		{"missing collection", `[{"q":"x"}]`},
		{"bad per_page", `[{"collection":"a","per_page":"lots"}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gw := &mockGateway{}
			svc := New(gw, "")
			_, err := svc.Multi(context.Background(), tc.in, CommonParams{})
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if gw.multiCalls != 0 {
				t.Error("gateway must not be called")
			}
		})
	}
}
