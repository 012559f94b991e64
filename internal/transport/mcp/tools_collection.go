package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	collectionuc "github.com/kailas-cloud/typesense-mcp/internal/usecase/collection"
)

const argCollectionName = "collection_name"

func (s *Server) collectionTools() []toolEntry {
	return []toolEntry{
		{
			tool: mcp.NewTool("check_health",
				mcp.WithDescription("Check Typesense cluster health status."),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			fn: s.checkHealth,
		},
		{
			tool: mcp.NewTool("list_collections",
				mcp.WithDescription("List all collections with their document count, field count and creation time."),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			fn: s.listCollections,
		},
		{
			tool: mcp.NewTool("describe_collection",
				mcp.WithDescription("Get the full schema of a collection."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString(argCollectionName, mcp.Required(), mcp.Description("Name of the collection.")),
			),
			fn: s.describeCollection,
		},
		{
			tool: mcp.NewTool("get_collection_fields",
				mcp.WithDescription("Get a concise list of a collection's fields with their type and facet, index, optional, sort and embed flags."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString(argCollectionName, mcp.Required(), mcp.Description("Name of the collection.")),
			),
			fn: s.collectionFields,
		},
		{
			tool: mcp.NewTool("analyze_collection",
				mcp.WithDescription("Analyze a collection: schema, embedding fields, facet value distributions "+
					"and sample documents. Run this before searching an unfamiliar collection."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString(argCollectionName, mcp.Required(), mcp.Description("Name of the collection.")),
				mcp.WithNumber("sample_size",
					mcp.DefaultNumber(collectionuc.DefaultSampleSize),
					mcp.Description("Number of sample documents (1-20)."),
				),
			),
			fn: s.analyzeCollection,
		},
		{
			tool: mcp.NewTool("create_collection",
				mcp.WithDescription(`Create a collection from a JSON schema, e.g. `+
					`{"name": "products", "fields": [{"name": "title", "type": "string"}, `+
					`{"name": "price", "type": "float", "facet": true}]}`),
				mcp.WithString("schema_json", mcp.Required(), mcp.Description("Collection schema as a JSON object.")),
			),
			fn: s.createCollection,
		},
		{
			tool: mcp.NewTool("delete_collection",
				mcp.WithDescription("Delete a collection and all of its documents. This cannot be undone."),
				mcp.WithDestructiveHintAnnotation(true),
				mcp.WithString(argCollectionName, mcp.Required(), mcp.Description("Name of the collection.")),
			),
			fn: s.deleteCollection,
		},
		{
			tool: mcp.NewTool("update_collection_schema",
				mcp.WithDescription(`Add or drop fields of a collection, e.g. `+
					`{"fields": [{"name": "new_field", "type": "string"}, {"name": "old_field", "drop": true}]}`),
				mcp.WithString(argCollectionName, mcp.Required(), mcp.Description("Name of the collection.")),
				mcp.WithString("schema_changes_json", mcp.Required(), mcp.Description("Schema changes as a JSON object.")),
			),
			fn: s.updateCollectionSchema,
		},
	}
}

func (s *Server) checkHealth(ctx context.Context, _ *argReader) (any, error) {
	return s.health.Engine(ctx)
}

func (s *Server) listCollections(ctx context.Context, _ *argReader) (any, error) {
	return s.collections.List(ctx)
}

func (s *Server) describeCollection(ctx context.Context, in *argReader) (any, error) {
	name := in.Required(argCollectionName)
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.collections.Describe(ctx, name)
}

func (s *Server) collectionFields(ctx context.Context, in *argReader) (any, error) {
	name := in.Required(argCollectionName)
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.collections.Fields(ctx, name)
}

func (s *Server) analyzeCollection(ctx context.Context, in *argReader) (any, error) {
	name := in.Required(argCollectionName)
	size := in.Int("sample_size", collectionuc.DefaultSampleSize)
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.collections.Analyze(ctx, name, size)
}

func (s *Server) createCollection(ctx context.Context, in *argReader) (any, error) {
	schema := in.Required("schema_json")
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.collections.Create(ctx, schema)
}

func (s *Server) deleteCollection(ctx context.Context, in *argReader) (any, error) {
	name := in.Required(argCollectionName)
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.collections.Delete(ctx, name)
}

func (s *Server) updateCollectionSchema(ctx context.Context, in *argReader) (any, error) {
	name := in.Required(argCollectionName)
	changes := in.Required("schema_changes_json")
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.collections.UpdateSchema(ctx, name, changes)
}
