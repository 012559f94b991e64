// Package params translates high-level search intent into the engine's native
// search parameter set.
//
// Build is a pure function: identical intents always produce identical
// Params, and a Params value cannot be modified once built. Optional
// parameters are attached only when they carry a non-default value so that
// engine-side defaults are never overridden by an explicit empty string.
package params

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/filter"
)

// Engine limits and defaults.
const (
	MinPerPage              = 1
	MaxPerPage              = 250
	DefaultAlpha            = 0.3
	DefaultGroupLimit       = 3
	DefaultMaxFacetValues   = 10
	DefaultPrefix           = "true"
	DefaultNLPromptCacheTTL = 86400
	Wildcard                = "*"

	// vectorKMultiplier sizes the nearest-neighbour candidate pool of a derived vector query.
	vectorKMultiplier = 5
)

// Engine parameter names.
const (
	KeyQ                     = "q"
	KeyQueryBy               = "query_by"
	KeyFilterBy              = "filter_by"
	KeySortBy                = "sort_by"
	KeyPage                  = "page"
	KeyPerPage               = "per_page"
	KeyVectorQuery           = "vector_query"
	KeyRerankHybridMatches   = "rerank_hybrid_matches"
	KeyGroupBy               = "group_by"
	KeyGroupLimit            = "group_limit"
	KeyFacetBy               = "facet_by"
	KeyMaxFacetValues        = "max_facet_values"
	KeyPrefix                = "prefix"
	KeyIncludeFields         = "include_fields"
	KeyExcludeFields         = "exclude_fields"
	KeyHighlightFields       = "highlight_fields"
	KeyNLQuery               = "nl_query"
	KeyNLModelID             = "nl_model_id"
	KeyNLQueryDebug          = "nl_query_debug"
	KeyNLQueryPromptCacheTTL = "nl_query_prompt_cache_ttl"
)

// Intent is the caller-side description of a search. Empty strings and nil
// pointers mean "not supplied"; numeric zero values fall back to defaults.
type Intent struct {
	Query    string
	QueryBy  string
	FilterBy filter.Expression
	SortBy   string
	Page     int
	PerPage  int

	// VectorQuery is forwarded verbatim when set; it wins over Alpha.
	VectorQuery string
	// Alpha is the keyword weight in rank fusion (0 = semantic, 1 = keyword).
	Alpha *float64
	// EmbeddingField names the vector field used when a vector query is
	// derived from Alpha. When empty, the first QueryBy field is used.
	EmbeddingField string
	Rerank         *bool

	GroupBy    string
	GroupLimit int

	FacetBy        string
	MaxFacetValues int

	Prefix          string
	IncludeFields   string
	ExcludeFields   string
	HighlightFields string

	NLModelID        string
	NLQueryDebug     bool
	NLPromptCacheTTL int
}

// Params is a resolved, engine-native parameter set. The zero value is empty.
type Params struct {
	values map[string]any
}

// CollectionSearch pairs a collection with its parameters; one entry of a
// multi-search.
type CollectionSearch struct {
	Collection string
	Params     Params
}

// Build resolves an intent into engine parameters. It only fails when the
// field list is empty for a non-wildcard query.
func Build(in Intent) (Params, error) {
	q := in.Query
	if strings.TrimSpace(q) == "" {
		q = Wildcard
	}
	if strings.TrimSpace(in.QueryBy) == "" && q != Wildcard {
		return Params{}, domain.NewValidationError("query_by is required")
	}

	perPage := ClampPerPage(in.PerPage)
	page := in.Page
	if page < 1 {
		page = 1
	}

	v := map[string]any{
		KeyQ:       q,
		KeyPerPage: perPage,
		KeyPage:    page,
	}
	setString(v, KeyQueryBy, in.QueryBy)
	setString(v, KeyFilterBy, in.FilterBy.String())
	setString(v, KeySortBy, in.SortBy)
	setString(v, KeyIncludeFields, in.IncludeFields)
	setString(v, KeyExcludeFields, in.ExcludeFields)
	setString(v, KeyHighlightFields, in.HighlightFields)

	if vq := resolveVectorQuery(in, perPage); vq != "" {
		v[KeyVectorQuery] = vq
	}
	if in.Rerank != nil {
		v[KeyRerankHybridMatches] = *in.Rerank
	}

	if in.GroupBy != "" {
		v[KeyGroupBy] = in.GroupBy
		v[KeyGroupLimit] = orDefault(in.GroupLimit, DefaultGroupLimit)
	}
	if in.FacetBy != "" {
		v[KeyFacetBy] = in.FacetBy
		v[KeyMaxFacetValues] = orDefault(in.MaxFacetValues, DefaultMaxFacetValues)
	}
	if in.Prefix != "" && in.Prefix != DefaultPrefix {
		v[KeyPrefix] = in.Prefix
	}

	if in.NLModelID != "" {
		v[KeyNLQuery] = true
		v[KeyNLModelID] = in.NLModelID
		if in.NLQueryDebug {
			v[KeyNLQueryDebug] = true
		}
		if in.NLPromptCacheTTL > 0 && in.NLPromptCacheTTL != DefaultNLPromptCacheTTL {
			v[KeyNLQueryPromptCacheTTL] = in.NLPromptCacheTTL
		}
	}

	return Params{values: v}, nil
}

// resolveVectorQuery returns the explicit override, or a clause derived from
// a non-default alpha of the form <field>:([], k:<per_page*5>, alpha:<alpha>).
//
// Without EmbeddingField the first query_by field is assumed to be the
// embedding field. Callers must list it first; the schema is not consulted.
func resolveVectorQuery(in Intent, perPage int) string {
	if in.VectorQuery != "" {
		return in.VectorQuery
	}
	if in.Alpha == nil || *in.Alpha == DefaultAlpha {
		return ""
	}

	field := strings.TrimSpace(in.EmbeddingField)
	if field == "" {
		first, _, _ := strings.Cut(in.QueryBy, ",")
		field = strings.TrimSpace(first)
	}
	if field == "" {
		return ""
	}

	alpha := min(max(*in.Alpha, 0), 1)
	return fmt.Sprintf("%s:([], k:%d, alpha:%s)",
		field, perPage*vectorKMultiplier, strconv.FormatFloat(alpha, 'f', -1, 64))
}

// ClampPerPage bounds a page size to [MinPerPage, MaxPerPage].
func ClampPerPage(n int) int {
	return min(max(n, MinPerPage), MaxPerPage)
}

// FromMap builds Params from a caller-supplied parameter object (multi-search
// entries, common parameters). A per_page entry is clamped; one that is not
// a number is rejected.
func FromMap(raw map[string]any) (Params, error) {
	v := make(map[string]any, len(raw))
	for k, val := range raw {
		v[k] = val
	}
	if pp, ok := v[KeyPerPage]; ok {
		n, err := toInt(pp)
		if err != nil {
			return Params{}, domain.NewValidationError("per_page: %v", err)
		}
		v[KeyPerPage] = ClampPerPage(n)
	}
	return Params{values: v}, nil
}

// Get returns the wire form of a parameter, or "" when absent.
func (p Params) Get(key string) string {
	val, ok := p.values[key]
	if !ok {
		return ""
	}
	return formatValue(val)
}

// PerPage returns the resolved page size (0 when absent).
func (p Params) PerPage() int {
	n, _ := toInt(p.values[KeyPerPage])
	return n
}

// Map returns a copy of the typed values.
func (p Params) Map() map[string]any {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the typed values as a JSON object with sorted keys.
func (p Params) MarshalJSON() ([]byte, error) {
	if p.values == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(p.values)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	return data, nil
}

func setString(v map[string]any, key, val string) {
	if val != "" {
		v[key] = val
	}
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", t)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", t)
		}
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
