package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	domdoc "github.com/kailas-cloud/typesense-mcp/internal/domain/document"
	documentuc "github.com/kailas-cloud/typesense-mcp/internal/usecase/document"
)

const (
	argDocumentID   = "document_id"
	argDocumentJSON = "document_json"
)

func (s *Server) documentTools() []toolEntry {
	collection := mcp.WithString(argCollectionName, mcp.Required(), mcp.Description("Name of the collection."))
	documentID := mcp.WithString(argDocumentID, mcp.Required(), mcp.Description("Document id."))

	return []toolEntry{
		{
			tool: mcp.NewTool("get_document",
				mcp.WithDescription("Retrieve a document by id."),
				mcp.WithReadOnlyHintAnnotation(true),
				collection, documentID,
			),
			fn: s.getDocument,
		},
		{
			tool: mcp.NewTool("create_document",
				mcp.WithDescription("Create a document. Fails if the id already exists."),
				collection,
				mcp.WithString(argDocumentJSON, mcp.Required(), mcp.Description("Document as a JSON object.")),
			),
			fn: s.createDocument,
		},
		{
			tool: mcp.NewTool("upsert_document",
				mcp.WithDescription("Create a document or replace it when the id exists."),
				collection,
				mcp.WithString(argDocumentJSON, mcp.Required(), mcp.Description("Document as a JSON object.")),
			),
			fn: s.upsertDocument,
		},
		{
			tool: mcp.NewTool("update_document",
				mcp.WithDescription("Partially update a document. Only the given fields change."),
				collection, documentID,
				mcp.WithString("partial_document_json", mcp.Required(), mcp.Description("Fields to update as a JSON object.")),
			),
			fn: s.updateDocument,
		},
		{
			tool: mcp.NewTool("delete_document",
				mcp.WithDescription("Delete a document by id."),
				mcp.WithDestructiveHintAnnotation(true),
				collection, documentID,
			),
			fn: s.deleteDocument,
		},
		{
			tool: mcp.NewTool("delete_documents_by_filter",
				mcp.WithDescription("Delete every document matching a filter, e.g. \"status:=archived\"."),
				mcp.WithDestructiveHintAnnotation(true),
				collection,
				mcp.WithString(argFilterBy, mcp.Required(), mcp.Description("Filter selecting the documents to delete.")),
			),
			fn: s.deleteDocumentsByFilter,
		},
		{
			tool: mcp.NewTool("import_documents",
				mcp.WithDescription("Bulk import a JSON array of documents. Reports successes and itemized failures."),
				collection,
				mcp.WithString("documents_json", mcp.Required(), mcp.Description("JSON array of documents.")),
				mcp.WithString("action", mcp.DefaultString(string(domdoc.ActionUpsert)),
					mcp.Enum(string(domdoc.ActionCreate), string(domdoc.ActionUpsert), string(domdoc.ActionUpdate)),
					mcp.Description("Import action."),
				),
			),
			fn: s.importDocuments,
		},
		{
			tool: mcp.NewTool("export_documents",
				mcp.WithDescription("Export documents of a collection. At most 100 documents are returned; "+
					"total_exported reports how many matched."),
				mcp.WithReadOnlyHintAnnotation(true),
				collection,
				mcp.WithString(argFilterBy, mcp.Description("Filter selecting the documents to export.")),
				mcp.WithString(argIncludeFields, mcp.Description("Fields to include.")),
				mcp.WithString(argExcludeFields, mcp.Description("Fields to exclude.")),
			),
			fn: s.exportDocuments,
		},
	}
}

func (s *Server) getDocument(ctx context.Context, in *argReader) (any, error) {
	collection, id := in.Required(argCollectionName), in.Required(argDocumentID)
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.documents.Get(ctx, collection, id)
}

func (s *Server) createDocument(ctx context.Context, in *argReader) (any, error) {
	collection, doc := in.Required(argCollectionName), in.Required(argDocumentJSON)
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.documents.Create(ctx, collection, doc)
}

func (s *Server) upsertDocument(ctx context.Context, in *argReader) (any, error) {
	collection, doc := in.Required(argCollectionName), in.Required(argDocumentJSON)
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.documents.Upsert(ctx, collection, doc)
}

func (s *Server) updateDocument(ctx context.Context, in *argReader) (any, error) {
	collection, id := in.Required(argCollectionName), in.Required(argDocumentID)
	partial := in.Required("partial_document_json")
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.documents.Update(ctx, collection, id, partial)
}

func (s *Server) deleteDocument(ctx context.Context, in *argReader) (any, error) {
	collection, id := in.Required(argCollectionName), in.Required(argDocumentID)
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.documents.Delete(ctx, collection, id)
}

func (s *Server) deleteDocumentsByFilter(ctx context.Context, in *argReader) (any, error) {
	collection, filterBy := in.Required(argCollectionName), in.Required(argFilterBy)
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.documents.DeleteByFilter(ctx, collection, filterBy)
}

func (s *Server) importDocuments(ctx context.Context, in *argReader) (any, error) {
	collection := in.Required(argCollectionName)
	docs := in.Required("documents_json")
	action := in.String("action")
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.documents.Import(ctx, collection, docs, action)
}

func (s *Server) exportDocuments(ctx context.Context, in *argReader) (any, error) {
	collection := in.Required(argCollectionName)
	opts := documentuc.ExportOptions{
		FilterBy:      in.String(argFilterBy),
		IncludeFields: in.String(argIncludeFields),
		ExcludeFields: in.String(argExcludeFields),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.documents.Export(ctx, collection, opts)
}
