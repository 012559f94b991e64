// Package result shapes raw engine search responses into a stable output.
package result

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
)

// Upstream response keys.
const (
	keyFound            = "found"
	keyPage             = "page"
	keySearchTimeMS     = "search_time_ms"
	keyHits             = "hits"
	keyGroupedHits      = "grouped_hits"
	keyFacetCounts      = "facet_counts"
	keyParsedNLQuery    = "parsed_nl_query"
	keyDocument         = "document"
	keyTextMatchInfo    = "text_match_info"
	keyVectorDistance   = "vector_distance"
	keyHighlights       = "highlights"
	keyHybridSearchInfo = "hybrid_search_info"
)

// Hit is a single shaped search hit. Optional fields are nil when the
// engine response did not carry them.
type Hit struct {
	Document         map[string]any
	TextMatchInfo    any
	VectorDistance   any
	Highlights       any
	HybridSearchInfo any
}

// Map returns the hit as a JSON-ready object.
func (h Hit) Map() map[string]any {
	out := map[string]any{keyDocument: h.Document}
	if h.Document == nil {
		out[keyDocument] = map[string]any{}
	}
	if h.TextMatchInfo != nil {
		out[keyTextMatchInfo] = h.TextMatchInfo
	}
	if h.VectorDistance != nil {
		out[keyVectorDistance] = h.VectorDistance
	}
	if h.Highlights != nil {
		out[keyHighlights] = h.Highlights
	}
	if h.HybridSearchInfo != nil {
		out[keyHybridSearchInfo] = h.HybridSearchInfo
	}
	return out
}

// Shaped is a formatted search response. A response has either flat Hits or
// GroupedHits, never both.
type Shaped struct {
	Found        int
	Page         int
	SearchTimeMS int
	Hits         []Hit
	// GroupedHits is passed through from the engine untouched.
	GroupedHits   []any
	FacetCounts   any
	ParsedNLQuery any
}

// Grouped reports whether the response carries grouped hits.
func (s Shaped) Grouped() bool { return s.GroupedHits != nil }

// Map returns the shaped response as a JSON-ready object.
func (s Shaped) Map() map[string]any {
	out := map[string]any{
		keyFound:        s.Found,
		keyPage:         s.Page,
		keySearchTimeMS: s.SearchTimeMS,
	}
	if s.Grouped() {
		out[keyGroupedHits] = s.GroupedHits
	} else {
		hits := make([]map[string]any, len(s.Hits))
		for i, h := range s.Hits {
			hits[i] = h.Map()
		}
		out[keyHits] = hits
	}
	if s.FacetCounts != nil {
		out[keyFacetCounts] = s.FacetCounts
	}
	if s.ParsedNLQuery != nil {
		out[keyParsedNLQuery] = s.ParsedNLQuery
	}
	return out
}

// MarshalJSON encodes the shaped response.
func (s Shaped) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

// Format shapes a raw engine response. Missing counters default to 0 and the
// page to 1. It fails only when the response structure is malformed.
func Format(raw map[string]any) (Shaped, error) {
	found, err := intField(raw, keyFound, 0)
	if err != nil {
		return Shaped{}, err
	}
	page, err := intField(raw, keyPage, 1)
	if err != nil {
		return Shaped{}, err
	}
	took, err := intField(raw, keySearchTimeMS, 0)
	if err != nil {
		return Shaped{}, err
	}

	out := Shaped{Found: found, Page: page, SearchTimeMS: took}

	if groups, ok := raw[keyGroupedHits].([]any); ok && len(groups) > 0 {
		out.GroupedHits = groups
	} else {
		hits, err := Hits(raw)
		if err != nil {
			return Shaped{}, err
		}
		out.Hits = make([]Hit, 0, len(hits))
		for i, h := range hits {
			hit, err := formatHit(h)
			if err != nil {
				return Shaped{}, fmt.Errorf("hit %d: %w", i, err)
			}
			out.Hits = append(out.Hits, hit)
		}
	}

	if nonEmpty(raw[keyFacetCounts]) {
		out.FacetCounts = raw[keyFacetCounts]
	}
	if nonEmpty(raw[keyParsedNLQuery]) {
		out.ParsedNLQuery = raw[keyParsedNLQuery]
	}
	return out, nil
}

// Hits returns the raw hit objects of a response. A missing or null hits key
// yields an empty list.
func Hits(raw map[string]any) ([]map[string]any, error) {
	v, ok := raw[keyHits]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, malformed("hits is %T, want array", v)
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, malformed("hit %d is %T, want object", i, item)
		}
		out = append(out, m)
	}
	return out, nil
}

// Document returns the document object of a raw hit, or an empty map when
// the hit has none.
func Document(hit map[string]any) (map[string]any, error) {
	v, ok := hit[keyDocument]
	if !ok || v == nil {
		return map[string]any{}, nil
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, malformed("document is %T, want object", v)
	}
	return doc, nil
}

// Found returns the engine's total match count, defaulting to 0.
func Found(raw map[string]any) int {
	n, _ := intField(raw, keyFound, 0)
	return n
}

func formatHit(h map[string]any) (Hit, error) {
	doc, err := Document(h)
	if err != nil {
		return Hit{}, err
	}
	hit := Hit{Document: doc}
	if v, ok := h[keyTextMatchInfo]; ok {
		hit.TextMatchInfo = v
	}
	if v, ok := h[keyVectorDistance]; ok {
		hit.VectorDistance = v
	}
	if v := h[keyHighlights]; nonEmpty(v) {
		hit.Highlights = v
	}
	if v, ok := h[keyHybridSearchInfo]; ok {
		hit.HybridSearchInfo = v
	}
	return hit, nil
}

func intField(raw map[string]any, key string, def int) (int, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return 0, malformed("%s: %v", key, err)
			}
			return int(f), nil
		}
		return int(n), nil
	default:
		return 0, malformed("%s is %T, want number", key, v)
	}
}

func nonEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case string:
		return t != ""
	default:
		return true
	}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: malformed search response: %s", domain.ErrEngine, fmt.Sprintf(format, args...))
}
