package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/params"
	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/result"
)

// Analysis limits.
const (
	DefaultSampleSize = 5
	MaxSampleSize     = 20
	maxFacetFields    = 10
	maxFacetValues    = 10
)

// Service handles collection schema operations.
type Service struct {
	gw Gateway
}

// New creates a collection service.
func New(gw Gateway) *Service {
	return &Service{gw: gw}
}

// Summary is the short listing form of a collection.
type Summary struct {
	Name         string `json:"name"`
	NumDocuments int64  `json:"num_documents"`
	NumFields    int    `json:"num_fields"`
	CreatedAt    any    `json:"created_at"`
}

// Field is the concise form of a schema field.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Facet    bool   `json:"facet"`
	Index    bool   `json:"index"`
	Optional bool   `json:"optional"`
	Sort     bool   `json:"sort"`
	Embed    bool   `json:"embed"`
}

// FacetSummary is the value distribution of one facet field.
type FacetSummary struct {
	TotalValues any          `json:"total_values"`
	TopValues   []FacetValue `json:"top_values"`
}

// FacetValue is one facet bucket.
type FacetValue struct {
	Value any `json:"value"`
	Count any `json:"count"`
}

// AnalysisField is the field form used in an Analysis.
type AnalysisField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Facet    bool   `json:"facet"`
	Optional bool   `json:"optional"`
}

// Analysis describes a collection's schema and contents.
type Analysis struct {
	Name                string                  `json:"name"`
	NumDocuments        int64                   `json:"num_documents"`
	Fields              []AnalysisField         `json:"fields"`
	EmbeddingFields     []string                `json:"embedding_fields"`
	DefaultSortingField string                  `json:"default_sorting_field"`
	FacetSummaries      map[string]FacetSummary `json:"facet_summaries"`
	SampleDocuments     []map[string]any        `json:"sample_documents"`
}

// List returns a summary of every collection.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	cols, err := s.gw.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	out := make([]Summary, 0, len(cols))
	for _, c := range cols {
		out = append(out, Summary{
			Name:         stringOf(c["name"]),
			NumDocuments: int64Of(c["num_documents"]),
			NumFields:    len(fieldsOf(c)),
			CreatedAt:    c["created_at"],
		})
	}
	return out, nil
}

// Describe returns the full engine schema of a collection.
func (s *Service) Describe(ctx context.Context, name string) (map[string]any, error) {
	if err := requireName(name); err != nil {
		return nil, err
	}
	col, err := s.gw.GetCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", name, err)
	}
	return col, nil
}

// Fields returns the concise field list of a collection.
func (s *Service) Fields(ctx context.Context, name string) ([]Field, error) {
	col, err := s.Describe(ctx, name)
	if err != nil {
		return nil, err
	}
	fields := fieldsOf(col)
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, Field{
			Name:     stringOf(f["name"]),
			Type:     stringOf(f["type"]),
			Facet:    boolOf(f["facet"], false),
			Index:    boolOf(f["index"], true),
			Optional: boolOf(f["optional"], false),
			Sort:     boolOf(f["sort"], false),
			Embed:    f["embed"] != nil,
		})
	}
	return out, nil
}

// Analyze summarizes a collection: its schema, sample documents with bulk
// fields stripped, and value distributions of up to ten facet fields. The
// sample and facet queries run concurrently.
func (s *Service) Analyze(ctx context.Context, name string, sampleSize int) (Analysis, error) {
	col, err := s.Describe(ctx, name)
	if err != nil {
		return Analysis{}, err
	}
	if sampleSize == 0 {
		sampleSize = DefaultSampleSize
	}
	sampleSize = min(max(sampleSize, 1), MaxSampleSize)

	fields := fieldsOf(col)
	out := Analysis{
		Name:                stringOf(col["name"]),
		NumDocuments:        int64Of(col["num_documents"]),
		Fields:              make([]AnalysisField, 0, len(fields)),
		EmbeddingFields:     []string{},
		DefaultSortingField: stringOf(col["default_sorting_field"]),
		FacetSummaries:      map[string]FacetSummary{},
		SampleDocuments:     []map[string]any{},
	}

	var facetFields []string
	for _, f := range fields {
		af := AnalysisField{
			Name:     stringOf(f["name"]),
			Type:     stringOf(f["type"]),
			Facet:    boolOf(f["facet"], false),
			Optional: boolOf(f["optional"], false),
		}
		out.Fields = append(out.Fields, af)
		if af.Facet {
			facetFields = append(facetFields, af.Name)
		}
		if af.Type == "float[]" && f["embed"] != nil {
			out.EmbeddingFields = append(out.EmbeddingFields, af.Name)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := params.Build(params.Intent{Query: params.Wildcard, PerPage: sampleSize})
		if err != nil {
			return err
		}
		raw, err := s.gw.Search(gctx, name, p)
		if err != nil {
			return fmt.Errorf("sample documents: %w", err)
		}
		hits, err := result.Hits(raw)
		if err != nil {
			return err
		}
		for _, h := range hits {
			doc, err := result.Document(h)
			if err != nil {
				return err
			}
			out.SampleDocuments = append(out.SampleDocuments, result.StripBulkFields(doc))
		}
		return nil
	})

	var facetCounts any
	if len(facetFields) > 0 {
		g.Go(func() error {
			p, err := params.Build(params.Intent{
				Query:          params.Wildcard,
				FacetBy:        strings.Join(facetFields[:min(len(facetFields), maxFacetFields)], ","),
				MaxFacetValues: maxFacetValues,
				PerPage:        params.MinPerPage,
			})
			if err != nil {
				return err
			}
			raw, err := s.gw.Search(gctx, name, p)
			if err != nil {
				return fmt.Errorf("facet summary: %w", err)
			}
			facetCounts = raw["facet_counts"]
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Analysis{}, fmt.Errorf("analyze %s: %w", name, err)
	}

	list, _ := facetCounts.([]any)
	for _, item := range list {
		fc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		summary := FacetSummary{TopValues: []FacetValue{}}
		if stats, ok := fc["stats"].(map[string]any); ok {
			summary.TotalValues = stats["total_values"]
		}
		counts, _ := fc["counts"].([]any)
		for _, c := range counts[:min(len(counts), maxFacetValues)] {
			if m, ok := c.(map[string]any); ok {
				summary.TopValues = append(summary.TopValues, FacetValue{Value: m["value"], Count: m["count"]})
			}
		}
		out.FacetSummaries[stringOf(fc["field_name"])] = summary
	}
	return out, nil
}

// Create creates a collection from a JSON schema. The schema is parsed and
// checked for a name and a fields array before the engine is called.
func (s *Service) Create(ctx context.Context, schemaJSON string) (map[string]any, error) {
	schema, err := domain.DecodeObject("schema_json", schemaJSON)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(stringOf(schema["name"])) == "" {
		return nil, domain.NewValidationError("schema_json: name is required")
	}
	if _, ok := schema["fields"].([]any); !ok {
		return nil, domain.NewValidationError("schema_json: fields must be an array")
	}

	col, err := s.gw.CreateCollection(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return col, nil
}

// Delete drops a collection and all of its documents.
func (s *Service) Delete(ctx context.Context, name string) (map[string]any, error) {
	if err := requireName(name); err != nil {
		return nil, err
	}
	col, err := s.gw.DeleteCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("delete collection %s: %w", name, err)
	}
	return col, nil
}

// UpdateSchema applies schema changes (adding or dropping fields).
func (s *Service) UpdateSchema(ctx context.Context, name, changesJSON string) (map[string]any, error) {
	if err := requireName(name); err != nil {
		return nil, err
	}
	changes, err := domain.DecodeObject("schema_changes_json", changesJSON)
	if err != nil {
		return nil, err
	}
	col, err := s.gw.UpdateCollection(ctx, name, changes)
	if err != nil {
		return nil, fmt.Errorf("update collection %s: %w", name, err)
	}
	return col, nil
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("collection name is required")
	}
	return nil
}

func fieldsOf(col map[string]any) []map[string]any {
	list, _ := col["fields"].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if f, ok := item.(map[string]any); ok {
			out = append(out, f)
		}
	}
	return out
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func boolOf(v any, def bool) bool {
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func int64Of(v any) int64 {
	switch t := v.(type) {
	case json.Number:
		n, _ := t.Int64()
		return n
	case float64:
		return int64(t)
	case int:
		return int64(t)
	case int64:
		return t
	default:
		return 0
	}
}
