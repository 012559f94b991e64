package rag

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/params"
)

// --- Mocks ---

type searchCall struct {
	collection string
	params     params.Params
}

// mockSearcher replays responses in call order and records every call.
type mockSearcher struct {
	responses []map[string]any
	errs      []error
	calls     []searchCall
}

func (m *mockSearcher) Search(_ context.Context, collection string, p params.Params) (map[string]any, error) {
	i := len(m.calls)
	m.calls = append(m.calls, searchCall{collection: collection, params: p})
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], err
	}
	return map[string]any{"found": 0, "hits": []any{}}, err
}

func hits(docs ...map[string]any) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = map[string]any{"document": d}
	}
	return out
}

func vector(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = 0.01
	}
	return out
}

// --- Tests ---

func TestRetrieve_ZeroMetadataHits(t *testing.T) {
	s := &mockSearcher{responses: []map[string]any{{"found": 0, "hits": []any{}}}}
	svc := New(s, "")

	res, err := svc.Retrieve(context.Background(), "docs", "chunks", "nothing", RetrieveOptions{MetaQueryBy: "title"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Found != 0 || len(res.Results) != 0 || res.Message != MsgNoMetadataHits {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Results == nil {
		t.Error("results must be an empty list, not nil")
	}
	if len(s.calls) != 1 {
		t.Errorf("expected exactly 1 gateway call, got %d", len(s.calls))
	}
}

func TestRetrieve_NoLinkField(t *testing.T) {
	s := &mockSearcher{responses: []map[string]any{{
		"found": 2,
		"hits":  hits(map[string]any{"title": "a"}, map[string]any{"title": "b", "doc_id": nil}),
	}}}
	svc := New(s, "")

	res, err := svc.Retrieve(context.Background(), "docs", "chunks", "q", RetrieveOptions{MetaQueryBy: "title"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Found != 2 || len(res.Results) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Message != "Documents found but none have 'doc_id' field." {
		t.Errorf("unexpected message %q", res.Message)
	}
	if len(s.calls) != 1 {
		t.Errorf("chunk query must not be issued, got %d calls", len(s.calls))
	}
}

func TestRetrieve_JoinKeepsOrderAndEmptyDocuments(t *testing.T) {
	s := &mockSearcher{responses: []map[string]any{
		{"found": 3, "hits": hits(
			map[string]any{"doc_id": "a", "title": "A", "embedding": vector(64)},
			map[string]any{"doc_id": "b", "title": "B"},
			map[string]any{"doc_id": "c", "title": "C"},
		)},
		{"found": 3, "hits": hits(
			map[string]any{"doc_id": "c", "content": "c1"},
			map[string]any{"doc_id": "a", "content": "a1", "embedding": vector(50)},
			map[string]any{"doc_id": "a", "content": "a2"},
			map[string]any{"doc_id": "zzz", "content": "stray"},
		)},
	}}
	svc := New(s, "")

	res, err := svc.Retrieve(context.Background(), "docs", "chunks", "q", RetrieveOptions{MetaQueryBy: "title"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.calls) != 2 {
		t.Fatalf("expected 2 gateway calls, got %d", len(s.calls))
	}

	if len(res.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(res.Results))
	}
	order := []string{res.Results[0].DocID, res.Results[1].DocID, res.Results[2].DocID}
	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("unexpected order %v", order)
	}

	b := res.Results[1]
	if b.Chunks == nil || len(b.Chunks) != 0 || b.ChunkCount != 0 {
		t.Errorf("b must have an empty chunk list, got %+v", b)
	}
	if res.Results[0].ChunkCount != 2 || res.Results[2].ChunkCount != 1 {
		t.Errorf("unexpected chunk counts: a=%d c=%d", res.Results[0].ChunkCount, res.Results[2].ChunkCount)
	}
	if res.TotalChunks != 3 || res.Found != 3 {
		t.Errorf("total_chunks=%d found=%d", res.TotalChunks, res.Found)
	}

	if _, ok := res.Results[0].Metadata["embedding"]; ok {
		t.Error("bulk field must be stripped from metadata")
	}
	if _, ok := res.Results[0].Chunks[0]["embedding"]; ok {
		t.Error("bulk field must be stripped from chunks")
	}
	if res.Truncated {
		t.Error("not truncated when every match was returned")
	}

	data, _ := json.Marshal(res.Results[1])
	if !strings.Contains(string(data), `"chunks":[]`) {
		t.Errorf("empty chunk list must serialize as [], got %s", data)
	}
}

func TestRetrieve_ChunkQueryParameters(t *testing.T) {
	s := &mockSearcher{responses: []map[string]any{
		{"hits": hits(
			map[string]any{"doc_id": "x`y"},
			map[string]any{"doc_id": "z"},
			map[string]any{"doc_id": "x`y"},
		)},
	}}
	svc := New(s, "")

	_, err := svc.Retrieve(context.Background(), "docs", "chunks", "q", RetrieveOptions{
		MetaQueryBy:    "title",
		MetaFilterBy:   "lang:=en",
		PerPage:        80,
		ChunksPerDoc:   10,
		ChunksFilterBy: "kind:=paragraph",
		ChunksSortBy:   "chunk_index:asc",
		ExcludeFields:  "embedding",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meta := s.calls[0].params
	if meta.PerPage() != MaxMetaPerPage {
		t.Errorf("metadata per_page = %d, want %d", meta.PerPage(), MaxMetaPerPage)
	}
	if meta.Get(params.KeyFilterBy) != "lang:=en" {
		t.Errorf("metadata filter = %q", meta.Get(params.KeyFilterBy))
	}

	chunk := s.calls[1]
	if chunk.collection != "chunks" {
		t.Errorf("chunk query went to %q", chunk.collection)
	}
	want := "doc_id:[x\\`y,z] && kind:=paragraph"
	if got := chunk.params.Get(params.KeyFilterBy); got != want {
		t.Errorf("chunk filter = %q, want %q", got, want)
	}
	if chunk.params.Get(params.KeyQ) != "*" || chunk.params.Get(params.KeyQueryBy) != "content" {
		t.Errorf("unexpected chunk q/query_by: %v", chunk.params.Map())
	}
	if chunk.params.PerPage() != 20 {
		t.Errorf("chunk per_page = %d, want 10*2", chunk.params.PerPage())
	}
	if chunk.params.Get(params.KeySortBy) != "chunk_index:asc" || chunk.params.Get(params.KeyExcludeFields) != "embedding" {
		t.Errorf("chunk sort/exclude not forwarded: %v", chunk.params.Map())
	}
}

func TestRetrieve_ChunkPerPageCapped(t *testing.T) {
	docs := make([]map[string]any, 10)
	for i := range docs {
		docs[i] = map[string]any{"doc_id": float64(i)}
	}
	s := &mockSearcher{responses: []map[string]any{{"hits": hits(docs...)}}}
	svc := New(s, "")

	if _, err := svc.Retrieve(context.Background(), "docs", "chunks", "q",
		RetrieveOptions{MetaQueryBy: "title"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.calls[1].params.PerPage(); got != params.MaxPerPage {
		t.Errorf("chunk per_page = %d, want %d", got, params.MaxPerPage)
	}
	if !strings.HasPrefix(s.calls[1].params.Get(params.KeyFilterBy), "doc_id:[0,1,2,") {
		t.Errorf("numeric link ids not rendered: %q", s.calls[1].params.Get(params.KeyFilterBy))
	}
}

func TestRetrieve_ChunkPerPageLargeChunksPerDoc(t *testing.T) {
	s := &mockSearcher{responses: []map[string]any{{"hits": hits(
		map[string]any{"doc_id": "a"},
		map[string]any{"doc_id": "b"},
		map[string]any{"doc_id": "c"},
	)}}}
	svc := New(s, "")

	if _, err := svc.Retrieve(context.Background(), "docs", "chunks", "q",
		RetrieveOptions{MetaQueryBy: "title", ChunksPerDoc: math.MaxInt / 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.calls[1].params.PerPage(); got != params.MaxPerPage {
		t.Errorf("chunk per_page = %d, want %d", got, params.MaxPerPage)
	}
}

func TestRetrieve_TruncationFlagged(t *testing.T) {
	s := &mockSearcher{responses: []map[string]any{
		{"hits": hits(map[string]any{"doc_id": "a"})},
		{"found": 400, "hits": hits(map[string]any{"doc_id": "a", "content": "x"})},
	}}
	svc := New(s, "")

	res, err := svc.Retrieve(context.Background(), "docs", "chunks", "q", RetrieveOptions{MetaQueryBy: "title"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Truncated {
		t.Error("expected truncated when chunk found exceeds returned hits")
	}
}

func TestRetrieve_ExcludeMetadata(t *testing.T) {
	s := &mockSearcher{responses: []map[string]any{
		{"hits": hits(map[string]any{"doc_id": "a", "title": "A"})},
	}}
	svc := New(s, "")

	exclude := false
	res, err := svc.Retrieve(context.Background(), "docs", "chunks", "q",
		RetrieveOptions{MetaQueryBy: "title", IncludeMetadata: &exclude})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Results[0].Metadata != nil {
		t.Error("metadata must be omitted")
	}
}

func TestRetrieve_GatewayErrorsPropagate(t *testing.T) {
	engineErr := domain.NewEngineError(404, "Could not find a field named `titl`.")

	s := &mockSearcher{errs: []error{engineErr}}
	_, err := New(s, "").Retrieve(context.Background(), "docs", "chunks", "q", RetrieveOptions{MetaQueryBy: "titl"})
	if !errors.Is(err, domain.ErrEngine) {
		t.Fatalf("expected engine error from metadata query, got %v", err)
	}

	s = &mockSearcher{
		responses: []map[string]any{{"hits": hits(map[string]any{"doc_id": "a"})}},
		errs:      []error{nil, domain.ErrConnectivity},
	}
	_, err = New(s, "").Retrieve(context.Background(), "docs", "chunks", "q", RetrieveOptions{MetaQueryBy: "title"})
	if !errors.Is(err, domain.ErrConnectivity) {
		t.Fatalf("expected connectivity error from chunk query, got %v", err)
	}
	if len(s.calls) != 2 {
		t.Errorf("no retry expected, got %d calls", len(s.calls))
	}
}

func TestRetrieve_Validation(t *testing.T) {
	s := &mockSearcher{}
	svc := New(s, "")

	if _, err := svc.Retrieve(context.Background(), "", "chunks", "q", RetrieveOptions{MetaQueryBy: "t"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for missing collection, got %v", err)
	}
	if _, err := svc.Retrieve(context.Background(), "docs", "chunks", "q", RetrieveOptions{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for missing query_by, got %v", err)
	}
	if len(s.calls) != 0 {
		t.Error("gateway must not be called on invalid input")
	}
}
