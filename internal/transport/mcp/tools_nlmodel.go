package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const argModelID = "model_id"

func (s *Server) nlModelTools() []toolEntry {
	modelID := mcp.WithString(argModelID, mcp.Required(), mcp.Description("NL search model id."))

	return []toolEntry{
		{
			tool: mcp.NewTool("create_nl_search_model",
				mcp.WithDescription(`Register an LLM for natural_language_search. model_config_json example: `+
					`{"id": "gpt4-model", "model_name": "openai/gpt-4o", "api_key": "sk-...", "max_bytes": 16000, `+
					`"temperature": 0.0}. Supported providers: openai/, cloudflare/, vllm/, google/.`),
				mcp.WithString("model_config_json", mcp.Required(), mcp.Description("Model configuration as a JSON object.")),
			),
			fn: s.createNLModel,
		},
		{
			tool: mcp.NewTool("list_nl_search_models",
				mcp.WithDescription("List all NL search models."),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			fn: s.listNLModels,
		},
		{
			tool: mcp.NewTool("get_nl_search_model",
				mcp.WithDescription("Get an NL search model."),
				mcp.WithReadOnlyHintAnnotation(true),
				modelID,
			),
			fn: s.getNLModel,
		},
		{
			tool: mcp.NewTool("update_nl_search_model",
				mcp.WithDescription("Update an NL search model's configuration."),
				modelID,
				mcp.WithString("updates_json", mcp.Required(), mcp.Description("Fields to update as a JSON object.")),
			),
			fn: s.updateNLModel,
		},
		{
			tool: mcp.NewTool("delete_nl_search_model",
				mcp.WithDescription("Delete an NL search model."),
				mcp.WithDestructiveHintAnnotation(true),
				modelID,
			),
			fn: s.deleteNLModel,
		},
	}
}

func (s *Server) createNLModel(ctx context.Context, in *argReader) (any, error) {
	cfg := in.Required("model_config_json")
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.nlModels.Create(ctx, cfg)
}

func (s *Server) listNLModels(ctx context.Context, _ *argReader) (any, error) {
	return s.nlModels.List(ctx)
}

func (s *Server) getNLModel(ctx context.Context, in *argReader) (any, error) {
	id := in.Required(argModelID)
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.nlModels.Get(ctx, id)
}

func (s *Server) updateNLModel(ctx context.Context, in *argReader) (any, error) {
	id, updates := in.Required(argModelID), in.Required("updates_json")
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.nlModels.Update(ctx, id, updates)
}

func (s *Server) deleteNLModel(ctx context.Context, in *argReader) (any, error) {
	id := in.Required(argModelID)
	if err := in.Err(); err != nil {
		return nil, err
	}
	return s.nlModels.Delete(ctx, id)
}
