// Package nlmodel manages the LLM configurations the engine uses to turn
// natural-language queries into structured search parameters.
package nlmodel

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
)

// Service handles NL search model CRUD.
type Service struct {
	gw Gateway
}

// New creates an NL model service.
func New(gw Gateway) *Service {
	return &Service{gw: gw}
}

// Create registers a model from a JSON configuration. model_name is the only
// key checked locally; provider-specific keys are validated by the engine.
func (s *Service) Create(ctx context.Context, configJSON string) (map[string]any, error) {
	cfg, err := domain.DecodeObject("model_config_json", configJSON)
	if err != nil {
		return nil, err
	}
	if name, _ := cfg["model_name"].(string); strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("model_config_json: model_name is required")
	}
	out, err := s.gw.CreateNLModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create nl model: %w", err)
	}
	return out, nil
}

// List returns every registered model.
func (s *Service) List(ctx context.Context) ([]map[string]any, error) {
	out, err := s.gw.ListNLModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nl models: %w", err)
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out, nil
}

// Get returns one model.
func (s *Service) Get(ctx context.Context, id string) (map[string]any, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	out, err := s.gw.GetNLModel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get nl model %s: %w", id, err)
	}
	return out, nil
}

// Update changes fields of a model configuration.
func (s *Service) Update(ctx context.Context, id, updatesJSON string) (map[string]any, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	updates, err := domain.DecodeObject("updates_json", updatesJSON)
	if err != nil {
		return nil, err
	}
	out, err := s.gw.UpdateNLModel(ctx, id, updates)
	if err != nil {
		return nil, fmt.Errorf("update nl model %s: %w", id, err)
	}
	return out, nil
}

// Delete removes a model.
func (s *Service) Delete(ctx context.Context, id string) (map[string]any, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	out, err := s.gw.DeleteNLModel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete nl model %s: %w", id, err)
	}
	return out, nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError("model_id is required")
	}
	return nil
}
