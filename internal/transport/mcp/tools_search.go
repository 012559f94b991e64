package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/params"
	searchuc "github.com/kailas-cloud/typesense-mcp/internal/usecase/search"
)

// Shared search argument names.
const (
	argQuery          = "query"
	argQueryBy        = "query_by"
	argFilterBy       = "filter_by"
	argSortBy         = "sort_by"
	argPage           = "page"
	argPerPage        = "per_page"
	argAlpha          = "alpha"
	argEmbeddingField = "embedding_field"
	argRerank         = "rerank_hybrid_matches"
	argGroupBy        = "group_by"
	argGroupLimit     = "group_limit"
	argFacetBy        = "facet_by"
	argMaxFacetValues = "max_facet_values"
	argIncludeFields  = "include_fields"
	argExcludeFields  = "exclude_fields"
)

func (s *Server) searchTools() []toolEntry {
	return []toolEntry{
		{
			tool: mcp.NewTool("hybrid_search",
				mcp.WithDescription("Hybrid search combining keyword and vector ranking. This is the primary search "+
					"tool for RAG. Include both text and embedding fields in query_by (e.g. \"title,content,embedding\"), "+
					"or set embedding_field."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString(argCollectionName, mcp.Required(), mcp.Description("Collection to search.")),
				mcp.WithString(argQuery, mcp.Required(), mcp.Description("Search query. Use '*' to match all documents.")),
				mcp.WithString(argQueryBy, mcp.Required(), mcp.Description("Comma-separated fields to search.")),
				mcp.WithString(argFilterBy, mcp.Description("Filter expression, e.g. \"category:=shoes && price:<100\".")),
				mcp.WithString(argSortBy, mcp.Description("Sort expression, e.g. \"_text_match:desc,price:asc\".")),
				mcp.WithNumber(argPerPage, mcp.DefaultNumber(searchuc.DefaultPerPage), mcp.Description("Results per page (max 250).")),
				mcp.WithNumber(argPage, mcp.DefaultNumber(1), mcp.Description("Page number.")),
				mcp.WithString("vector_query", mcp.Description("Explicit vector query, e.g. \"embedding:([], k:100, alpha:0.5)\". Overrides alpha.")),
				mcp.WithNumber(argAlpha, mcp.DefaultNumber(params.DefaultAlpha),
					mcp.Description("Keyword weight in rank fusion: 0 is pure semantic, 1 is pure keyword.")),
				mcp.WithString(argEmbeddingField, mcp.Description("Vector field used when alpha is set. Defaults to the server setting, then the first query_by field.")),
				mcp.WithBoolean(argRerank, mcp.DefaultBool(true), mcp.Description("Compute both keyword and vector scores for every result.")),
				mcp.WithString(argGroupBy, mcp.Description("Field to group results by.")),
				mcp.WithNumber(argGroupLimit, mcp.DefaultNumber(params.DefaultGroupLimit), mcp.Description("Results per group.")),
				mcp.WithString(argFacetBy, mcp.Description("Comma-separated fields to facet on.")),
				mcp.WithNumber(argMaxFacetValues, mcp.DefaultNumber(params.DefaultMaxFacetValues), mcp.Description("Maximum values per facet.")),
				mcp.WithString("prefix", mcp.DefaultString(params.DefaultPrefix), mcp.Description("Prefix matching per query_by field, e.g. \"true,false\".")),
				mcp.WithString(argIncludeFields, mcp.Description("Fields to include in documents.")),
				mcp.WithString(argExcludeFields, mcp.Description("Fields to exclude from documents, e.g. \"embedding\".")),
				mcp.WithString("highlight_fields", mcp.Description("Fields to highlight.")),
			),
			fn: s.hybridSearch,
		},
		{
			tool: mcp.NewTool("keyword_search",
				mcp.WithDescription("Keyword-only search with no vector component. Best for exact terms and filtering. "+
					"Do not include embedding fields in query_by."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString(argCollectionName, mcp.Required(), mcp.Description("Collection to search.")),
				mcp.WithString(argQuery, mcp.Required(), mcp.Description("Search query. Use '*' to match all documents.")),
				mcp.WithString(argQueryBy, mcp.Required(), mcp.Description("Comma-separated text fields to search.")),
				mcp.WithString(argFilterBy, mcp.Description("Filter expression.")),
				mcp.WithString(argSortBy, mcp.Description("Sort expression.")),
				mcp.WithNumber(argPerPage, mcp.DefaultNumber(searchuc.DefaultPerPage), mcp.Description("Results per page (max 250).")),
				mcp.WithNumber(argPage, mcp.DefaultNumber(1), mcp.Description("Page number.")),
				mcp.WithString(argFacetBy, mcp.Description("Comma-separated fields to facet on.")),
				mcp.WithString(argGroupBy, mcp.Description("Field to group results by.")),
				mcp.WithNumber(argGroupLimit, mcp.DefaultNumber(params.DefaultGroupLimit), mcp.Description("Results per group.")),
				mcp.WithString(argIncludeFields, mcp.Description("Fields to include in documents.")),
				mcp.WithString(argExcludeFields, mcp.Description("Fields to exclude from documents.")),
			),
			fn: s.keywordSearch,
		},
		{
			tool: mcp.NewTool("natural_language_search",
				mcp.WithDescription("Natural language search: an LLM registered with create_nl_search_model converts "+
					"the query into filters and sorts, e.g. \"red shirts under $50\"."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString(argCollectionName, mcp.Required(), mcp.Description("Collection to search.")),
				mcp.WithString(argQuery, mcp.Required(), mcp.Description("Natural language query.")),
				mcp.WithString(argQueryBy, mcp.Required(), mcp.Description("Comma-separated fields to search.")),
				mcp.WithString("nl_model_id", mcp.Required(), mcp.Description("ID of the NL search model.")),
				mcp.WithString(argFilterBy, mcp.Description("Explicit filters combined with the generated ones.")),
				mcp.WithString(argSortBy, mcp.Description("Explicit sort expression.")),
				mcp.WithNumber(argPerPage, mcp.DefaultNumber(searchuc.DefaultPerPage), mcp.Description("Results per page (max 250).")),
				mcp.WithNumber(argPage, mcp.DefaultNumber(1), mcp.Description("Page number.")),
				mcp.WithBoolean("nl_query_debug", mcp.DefaultBool(false), mcp.Description("Return the parsed NL query.")),
				mcp.WithNumber("nl_query_prompt_cache_ttl", mcp.DefaultNumber(params.DefaultNLPromptCacheTTL),
					mcp.Description("Schema prompt cache TTL in seconds.")),
				mcp.WithString(argIncludeFields, mcp.Description("Fields to include in documents.")),
				mcp.WithString(argExcludeFields, mcp.Description("Fields to exclude from documents.")),
				mcp.WithString(argFacetBy, mcp.Description("Comma-separated fields to facet on.")),
			),
			fn: s.naturalLanguageSearch,
		},
		{
			tool: mcp.NewTool("multi_search",
				mcp.WithDescription(`Run several searches in one request, across one or more collections. `+
					`searches_json is an array such as [{"collection": "products", "q": "laptop", "query_by": "title"}, `+
					`{"collection": "reviews", "q": "laptop", "query_by": "content"}].`),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("searches_json", mcp.Required(), mcp.Description("JSON array of search objects, each with a collection.")),
				mcp.WithString("common_query_by", mcp.Description("query_by applied to every search unless overridden.")),
				mcp.WithString("common_filter_by", mcp.Description("filter_by applied to every search.")),
				mcp.WithNumber("common_per_page", mcp.DefaultNumber(searchuc.DefaultPerPage), mcp.Description("per_page applied to every search.")),
			),
			fn: s.multiSearch,
		},
	}
}

func (s *Server) hybridSearch(ctx context.Context, in *argReader) (any, error) {
	collection := in.Required(argCollectionName)
	query := in.Required(argQuery)
	queryBy := in.Required(argQueryBy)
	opts := searchuc.HybridOptions{
		FilterBy:        in.String(argFilterBy),
		SortBy:          in.String(argSortBy),
		Page:            in.Int(argPage, 1),
		PerPage:         in.Int(argPerPage, searchuc.DefaultPerPage),
		VectorQuery:     in.String("vector_query"),
		Alpha:           in.Float(argAlpha),
		EmbeddingField:  in.String(argEmbeddingField),
		Rerank:          in.Bool(argRerank),
		GroupBy:         in.String(argGroupBy),
		GroupLimit:      in.Int(argGroupLimit, params.DefaultGroupLimit),
		FacetBy:         in.String(argFacetBy),
		MaxFacetValues:  in.Int(argMaxFacetValues, params.DefaultMaxFacetValues),
		Prefix:          in.StringDefault("prefix", params.DefaultPrefix),
		IncludeFields:   in.String(argIncludeFields),
		ExcludeFields:   in.String(argExcludeFields),
		HighlightFields: in.String("highlight_fields"),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.search.Hybrid(ctx, collection, query, queryBy, opts)
}

func (s *Server) keywordSearch(ctx context.Context, in *argReader) (any, error) {
	collection := in.Required(argCollectionName)
	query := in.Required(argQuery)
	queryBy := in.Required(argQueryBy)
	opts := searchuc.KeywordOptions{
		FilterBy:      in.String(argFilterBy),
		SortBy:        in.String(argSortBy),
		Page:          in.Int(argPage, 1),
		PerPage:       in.Int(argPerPage, searchuc.DefaultPerPage),
		GroupBy:       in.String(argGroupBy),
		GroupLimit:    in.Int(argGroupLimit, params.DefaultGroupLimit),
		FacetBy:       in.String(argFacetBy),
		IncludeFields: in.String(argIncludeFields),
		ExcludeFields: in.String(argExcludeFields),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.search.Keyword(ctx, collection, query, queryBy, opts)
}

func (s *Server) naturalLanguageSearch(ctx context.Context, in *argReader) (any, error) {
	collection := in.Required(argCollectionName)
	query := in.Required(argQuery)
	queryBy := in.Required(argQueryBy)
	modelID := in.Required("nl_model_id")
	opts := searchuc.NLOptions{
		FilterBy:       in.String(argFilterBy),
		SortBy:         in.String(argSortBy),
		Page:           in.Int(argPage, 1),
		PerPage:        in.Int(argPerPage, searchuc.DefaultPerPage),
		Debug:          in.BoolDefault("nl_query_debug", false),
		PromptCacheTTL: in.Int("nl_query_prompt_cache_ttl", params.DefaultNLPromptCacheTTL),
		FacetBy:        in.String(argFacetBy),
		IncludeFields:  in.String(argIncludeFields),
		ExcludeFields:  in.String(argExcludeFields),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.search.NaturalLanguage(ctx, collection, query, queryBy, modelID, opts)
}

func (s *Server) multiSearch(ctx context.Context, in *argReader) (any, error) {
	searches := in.Required("searches_json")
	common := searchuc.CommonParams{
		QueryBy:  in.String("common_query_by"),
		FilterBy: in.String("common_filter_by"),
		PerPage:  in.Int("common_per_page", searchuc.DefaultPerPage),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	results, err := s.search.Multi(ctx, searches, common)
	if err != nil {
		return nil, err
	}
	return map[string]any{"results": results}, nil
}
