package params

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/filter"
)

func ptr[T any](v T) *T { return &v }

func mustBuild(t *testing.T, in Intent) Params {
	t.Helper()
	p, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return p
}

func TestBuild_PerPageClamp(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{10, 10},
		{250, 250},
		{251, 250},
		{99999, 250},
	}

	for _, tc := range tests {
		p := mustBuild(t, Intent{Query: "shoes", QueryBy: "title", PerPage: tc.in})
		if p.PerPage() != tc.want {
			t.Errorf("per_page %d: got %d, want %d", tc.in, p.PerPage(), tc.want)
		}
	}
}

func TestBuild_RequiresQueryByForTextQuery(t *testing.T) {
	_, err := Build(Intent{Query: "shoes"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	p, err := Build(Intent{Query: "*"})
	if err != nil {
		t.Fatalf("wildcard without query_by should build: %v", err)
	}
	if p.Get(KeyQueryBy) != "" {
		t.Error("query_by must be absent when not supplied")
	}
}

func TestBuild_EmptyQueryDefaultsToWildcard(t *testing.T) {
	p := mustBuild(t, Intent{QueryBy: "title"})
	if p.Get(KeyQ) != Wildcard {
		t.Errorf("expected q=*, got %q", p.Get(KeyQ))
	}
	if p.Get(KeyPage) != "1" {
		t.Errorf("expected page=1, got %q", p.Get(KeyPage))
	}
}

func TestBuild_EmptyOptionalsAreAbsent(t *testing.T) {
	p := mustBuild(t, Intent{Query: "q", QueryBy: "title", PerPage: 10})

	absent := []string{
		KeyFilterBy, KeySortBy, KeyIncludeFields, KeyExcludeFields, KeyHighlightFields,
		KeyVectorQuery, KeyRerankHybridMatches, KeyGroupBy, KeyGroupLimit,
		KeyFacetBy, KeyMaxFacetValues, KeyPrefix, KeyNLQuery, KeyNLModelID,
	}
	for _, k := range absent {
		if p.Get(k) != "" {
			t.Errorf("expected %s to be absent, got %q", k, p.Get(k))
		}
	}
	if got := p.Map(); len(got) != 4 {
		t.Errorf("expected 4 params (q, query_by, per_page, page), got %v", got)
	}
}

func TestBuild_OptionalStringsAttached(t *testing.T) {
	p := mustBuild(t, Intent{
		Query:           "q",
		QueryBy:         "title",
		FilterBy:        filter.Eq("status", "active"),
		SortBy:          "price:asc",
		IncludeFields:   "title",
		ExcludeFields:   "embedding",
		HighlightFields: "title",
	})

	want := map[string]string{
		KeyFilterBy:        "status:=active",
		KeySortBy:          "price:asc",
		KeyIncludeFields:   "title",
		KeyExcludeFields:   "embedding",
		KeyHighlightFields: "title",
	}
	for k, v := range want {
		if p.Get(k) != v {
			t.Errorf("%s: got %q, want %q", k, p.Get(k), v)
		}
	}
}

func TestBuild_ExplicitVectorQueryWins(t *testing.T) {
	p := mustBuild(t, Intent{
		Query:       "q",
		QueryBy:     "title,embedding",
		VectorQuery: "embedding:([], k:200, distance_threshold:0.5)",
		Alpha:       ptr(0.9),
	})
	if p.Get(KeyVectorQuery) != "embedding:([], k:200, distance_threshold:0.5)" {
		t.Errorf("override not forwarded verbatim: %q", p.Get(KeyVectorQuery))
	}
}

func TestBuild_AlphaDerivesFromFirstField(t *testing.T) {
	p := mustBuild(t, Intent{
		Query:   "q",
		QueryBy: "title,embedding",
		PerPage: 10,
		Alpha:   ptr(0.7),
	})
	want := "title:([], k:50, alpha:0.7)"
	if p.Get(KeyVectorQuery) != want {
		t.Errorf("got %q, want %q", p.Get(KeyVectorQuery), want)
	}
}

func TestBuild_AlphaUsesEmbeddingFieldWhenSet(t *testing.T) {
	p := mustBuild(t, Intent{
		Query:          "q",
		QueryBy:        "title,embedding",
		PerPage:        4,
		Alpha:          ptr(0.5),
		EmbeddingField: "embedding",
	})
	want := "embedding:([], k:20, alpha:0.5)"
	if p.Get(KeyVectorQuery) != want {
		t.Errorf("got %q, want %q", p.Get(KeyVectorQuery), want)
	}
}

func TestBuild_DefaultAlphaAddsNoVectorQuery(t *testing.T) {
	for _, alpha := range []*float64{nil, ptr(DefaultAlpha)} {
		p := mustBuild(t, Intent{Query: "q", QueryBy: "title,embedding", Alpha: alpha})
		if p.Get(KeyVectorQuery) != "" {
			t.Errorf("unexpected vector_query %q", p.Get(KeyVectorQuery))
		}
	}
}

func TestBuild_AlphaClampedAndKUsesClampedPerPage(t *testing.T) {
	p := mustBuild(t, Intent{Query: "q", QueryBy: "embedding", PerPage: 1000, Alpha: ptr(1.5)})
	want := "embedding:([], k:1250, alpha:1)"
	if p.Get(KeyVectorQuery) != want {
		t.Errorf("got %q, want %q", p.Get(KeyVectorQuery), want)
	}
}

func TestBuild_GroupingAndFacetingArePairs(t *testing.T) {
	p := mustBuild(t, Intent{Query: "q", QueryBy: "title", GroupBy: "category", FacetBy: "brand"})
	if p.Get(KeyGroupBy) != "category" || p.Get(KeyGroupLimit) != "3" {
		t.Errorf("group pair: got %q/%q", p.Get(KeyGroupBy), p.Get(KeyGroupLimit))
	}
	if p.Get(KeyFacetBy) != "brand" || p.Get(KeyMaxFacetValues) != "10" {
		t.Errorf("facet pair: got %q/%q", p.Get(KeyFacetBy), p.Get(KeyMaxFacetValues))
	}

	p = mustBuild(t, Intent{Query: "q", QueryBy: "title", GroupLimit: 7, MaxFacetValues: 20})
	if p.Get(KeyGroupLimit) != "" || p.Get(KeyMaxFacetValues) != "" {
		t.Error("limits without their field must not be attached")
	}
}

func TestBuild_PrefixOnlyWhenNonDefault(t *testing.T) {
	p := mustBuild(t, Intent{Query: "q", QueryBy: "title", Prefix: "true"})
	if p.Get(KeyPrefix) != "" {
		t.Error("default prefix must not be forwarded")
	}
	p = mustBuild(t, Intent{Query: "q", QueryBy: "title", Prefix: "false"})
	if p.Get(KeyPrefix) != "false" {
		t.Errorf("expected prefix=false, got %q", p.Get(KeyPrefix))
	}
}

func TestBuild_Rerank(t *testing.T) {
	p := mustBuild(t, Intent{Query: "q", QueryBy: "title", Rerank: ptr(true)})
	if p.Get(KeyRerankHybridMatches) != "true" {
		t.Errorf("expected rerank=true, got %q", p.Get(KeyRerankHybridMatches))
	}
}

func TestBuild_NaturalLanguage(t *testing.T) {
	p := mustBuild(t, Intent{
		Query: "red shirts under 50", QueryBy: "title",
		NLModelID: "gemini", NLQueryDebug: true, NLPromptCacheTTL: DefaultNLPromptCacheTTL,
	})
	if p.Get(KeyNLQuery) != "true" || p.Get(KeyNLModelID) != "gemini" || p.Get(KeyNLQueryDebug) != "true" {
		t.Errorf("unexpected nl params: %v", p.Map())
	}
	if p.Get(KeyNLQueryPromptCacheTTL) != "" {
		t.Error("default prompt cache ttl must not be forwarded")
	}

	p = mustBuild(t, Intent{Query: "x", QueryBy: "title", NLModelID: "m", NLPromptCacheTTL: 60})
	if p.Get(KeyNLQueryPromptCacheTTL) != "60" {
		t.Errorf("expected ttl=60, got %q", p.Get(KeyNLQueryPromptCacheTTL))
	}
}

func TestBuild_Idempotent(t *testing.T) {
	in := Intent{
		Query: "q", QueryBy: "title,embedding", PerPage: 30, Alpha: ptr(0.6),
		GroupBy: "doc_id", FacetBy: "category", Rerank: ptr(true), SortBy: "_text_match:desc",
	}
	a := mustBuild(t, in)
	b := mustBuild(t, in)

	ja, _ := a.MarshalJSON()
	jb, _ := b.MarshalJSON()
	if string(ja) != string(jb) {
		t.Errorf("json differs:\n%s\n%s", ja, jb)
	}
}

func TestParams_MapIsACopy(t *testing.T) {
	p := mustBuild(t, Intent{Query: "q", QueryBy: "title"})
	m := p.Map()
	m[KeyQ] = "mutated"
	if p.Get(KeyQ) != "q" {
		t.Error("Params mutated through Map()")
	}
}

func TestFromMap_ClampsPerPage(t *testing.T) {
	p, err := FromMap(map[string]any{"q": "x", "per_page": float64(1000)})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if p.PerPage() != MaxPerPage {
		t.Errorf("expected %d, got %d", MaxPerPage, p.PerPage())
	}

	if _, err := FromMap(map[string]any{"per_page": "lots"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestParams_ZeroValueMarshal(t *testing.T) {
	var p Params
	data, err := p.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("expected {}, got %s", data)
	}
}
