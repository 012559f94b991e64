package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kailas-cloud/typesense-mcp/internal/domain/search/params"
	raguc "github.com/kailas-cloud/typesense-mcp/internal/usecase/rag"
)

const (
	argChunksCollection = "chunks_collection"
	argDocIDField       = "doc_id_field"
)

func (s *Server) ragTools() []toolEntry {
	return []toolEntry{
		{
			tool: mcp.NewTool("rag_search_and_retrieve_chunks",
				mcp.WithDescription("Two-stage RAG retrieval: search a metadata collection, then fetch the chunks of "+
					"every matched document from the chunks collection, joined on doc_id_field. Returns each "+
					"document's metadata next to its chunks."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("metadata_collection", mcp.Required(), mcp.Description("Collection of document metadata records.")),
				mcp.WithString(argChunksCollection, mcp.Required(), mcp.Description("Collection of document chunks.")),
				mcp.WithString(argQuery, mcp.Required(), mcp.Description("Search query for the metadata collection.")),
				mcp.WithString(argQueryBy, mcp.Required(), mcp.Description("Metadata fields to search.")),
				mcp.WithString(argDocIDField, mcp.DefaultString(raguc.DefaultLinkField),
					mcp.Description("Field linking metadata records to chunks.")),
				mcp.WithString("chunk_content_field", mcp.DefaultString(raguc.DefaultChunkContentField),
					mcp.Description("Chunk text field.")),
				mcp.WithString(argFilterBy, mcp.Description("Filter on the metadata collection.")),
				mcp.WithNumber(argPerPage, mcp.DefaultNumber(raguc.DefaultMetaPerPage),
					mcp.Description("Number of metadata documents to retrieve (max 50).")),
				mcp.WithNumber("chunks_per_doc", mcp.DefaultNumber(raguc.DefaultChunksPerDoc),
					mcp.Description("Maximum chunks per document.")),
				mcp.WithBoolean("include_metadata", mcp.DefaultBool(true), mcp.Description("Include metadata in results.")),
				mcp.WithString("chunks_sort_by", mcp.Description("Sort for chunks, e.g. \"chunk_index:asc\".")),
				mcp.WithString("chunks_filter_by", mcp.Description("Extra filter on chunks.")),
				mcp.WithString(argExcludeFields, mcp.Description("Chunk fields to exclude, e.g. \"embedding\".")),
			),
			fn: s.ragRetrieve,
		},
		{
			tool: mcp.NewTool("rag_hybrid_chunk_search",
				mcp.WithDescription("Hybrid search directly over a chunks collection, optionally grouped by source "+
					"document. Use when the most relevant passages matter more than document metadata."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString(argChunksCollection, mcp.Required(), mcp.Description("Collection of document chunks.")),
				mcp.WithString(argQuery, mcp.Required(), mcp.Description("Search query.")),
				mcp.WithString(argQueryBy, mcp.Required(), mcp.Description("Fields to search, including the embedding field.")),
				mcp.WithString(argFilterBy, mcp.Description("Filter expression.")),
				mcp.WithNumber(argPerPage, mcp.DefaultNumber(raguc.DefaultChunkSearchPerPage), mcp.Description("Number of chunks.")),
				mcp.WithNumber(argAlpha, mcp.DefaultNumber(params.DefaultAlpha),
					mcp.Description("Keyword weight in rank fusion: 0 is pure semantic, 1 is pure keyword.")),
				mcp.WithString(argEmbeddingField, mcp.Description("Vector field used when alpha is set.")),
				mcp.WithBoolean(argRerank, mcp.DefaultBool(true), mcp.Description("Compute both keyword and vector scores for every result.")),
				mcp.WithString("group_by_doc", mcp.Description("Field to group chunks by, e.g. \"doc_id\".")),
				mcp.WithNumber(argGroupLimit, mcp.DefaultNumber(raguc.DefaultChunkGroupLimit), mcp.Description("Chunks per group.")),
				mcp.WithString(argExcludeFields, mcp.Description("Fields to exclude.")),
				mcp.WithString(argIncludeFields, mcp.Description("Fields to include.")),
			),
			fn: s.ragHybridChunks,
		},
		{
			tool: mcp.NewTool("get_document_chunks",
				mcp.WithDescription("Get every chunk of one source document, e.g. to read its full content in order."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString(argChunksCollection, mcp.Required(), mcp.Description("Collection of document chunks.")),
				mcp.WithString("doc_id", mcp.Required(), mcp.Description("Source document id.")),
				mcp.WithString(argDocIDField, mcp.DefaultString(raguc.DefaultLinkField),
					mcp.Description("Field linking chunks to their document.")),
				mcp.WithString(argSortBy, mcp.Description("Sort expression, e.g. \"chunk_index:asc\".")),
				mcp.WithString(argFilterBy, mcp.Description("Extra filter on chunks.")),
				mcp.WithNumber(argPerPage, mcp.DefaultNumber(raguc.DefaultDocumentChunksPerPage), mcp.Description("Maximum chunks (max 250).")),
				mcp.WithString(argExcludeFields, mcp.Description("Fields to exclude.")),
				mcp.WithString(argIncludeFields, mcp.Description("Fields to include.")),
			),
			fn: s.documentChunks,
		},
	}
}

func (s *Server) ragRetrieve(ctx context.Context, in *argReader) (any, error) {
	meta := in.Required("metadata_collection")
	chunks := in.Required(argChunksCollection)
	query := in.Required(argQuery)
	opts := raguc.RetrieveOptions{
		MetaQueryBy:       in.Required(argQueryBy),
		MetaFilterBy:      in.String(argFilterBy),
		LinkField:         in.StringDefault(argDocIDField, raguc.DefaultLinkField),
		ChunkContentField: in.StringDefault("chunk_content_field", raguc.DefaultChunkContentField),
		PerPage:           in.Int(argPerPage, raguc.DefaultMetaPerPage),
		ChunksPerDoc:      in.Int("chunks_per_doc", raguc.DefaultChunksPerDoc),
		IncludeMetadata:   in.Bool("include_metadata"),
		ChunksSortBy:      in.String("chunks_sort_by"),
		ChunksFilterBy:    in.String("chunks_filter_by"),
		ExcludeFields:     in.String(argExcludeFields),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.rag.Retrieve(ctx, meta, chunks, query, opts)
}

func (s *Server) ragHybridChunks(ctx context.Context, in *argReader) (any, error) {
	chunks := in.Required(argChunksCollection)
	query := in.Required(argQuery)
	queryBy := in.Required(argQueryBy)
	opts := raguc.ChunkSearchOptions{
		FilterBy:       in.String(argFilterBy),
		PerPage:        in.Int(argPerPage, raguc.DefaultChunkSearchPerPage),
		Alpha:          in.Float(argAlpha),
		EmbeddingField: in.String(argEmbeddingField),
		Rerank:         in.Bool(argRerank),
		GroupByDoc:     in.String("group_by_doc"),
		GroupLimit:     in.Int(argGroupLimit, raguc.DefaultChunkGroupLimit),
		IncludeFields:  in.String(argIncludeFields),
		ExcludeFields:  in.String(argExcludeFields),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.rag.HybridChunks(ctx, chunks, query, queryBy, opts)
}

func (s *Server) documentChunks(ctx context.Context, in *argReader) (any, error) {
	chunks := in.Required(argChunksCollection)
	docID := in.Required("doc_id")
	opts := raguc.DocumentChunksOptions{
		LinkField:     in.StringDefault(argDocIDField, raguc.DefaultLinkField),
		SortBy:        in.String(argSortBy),
		FilterBy:      in.String(argFilterBy),
		PerPage:       in.Int(argPerPage, raguc.DefaultDocumentChunksPerPage),
		IncludeFields: in.String(argIncludeFields),
		ExcludeFields: in.String(argExcludeFields),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.rag.DocumentChunks(ctx, chunks, docID, opts)
}
