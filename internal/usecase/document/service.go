package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	domdoc "github.com/kailas-cloud/typesense-mcp/internal/domain/document"
)

// ExportLimit caps how many exported documents are returned to the caller.
const ExportLimit = 100

// Service handles document CRUD, bulk import and export.
type Service struct {
	gw Gateway
}

// New creates a document service.
func New(gw Gateway) *Service {
	return &Service{gw: gw}
}

// Get fetches a document by id.
func (s *Service) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	if err := requireIDs(collection, id); err != nil {
		return nil, err
	}
	doc, err := s.gw.GetDocument(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// Create inserts a new document; it fails when the id already exists.
func (s *Service) Create(ctx context.Context, collection, documentJSON string) (map[string]any, error) {
	doc, err := parseDocument(collection, "document_json", documentJSON)
	if err != nil {
		return nil, err
	}
	out, err := s.gw.CreateDocument(ctx, collection, doc)
	if err != nil {
		return nil, fmt.Errorf("create document in %s: %w", collection, err)
	}
	return out, nil
}

// Upsert inserts a document or replaces the one with the same id.
func (s *Service) Upsert(ctx context.Context, collection, documentJSON string) (map[string]any, error) {
	doc, err := parseDocument(collection, "document_json", documentJSON)
	if err != nil {
		return nil, err
	}
	out, err := s.gw.UpsertDocument(ctx, collection, doc)
	if err != nil {
		return nil, fmt.Errorf("upsert document in %s: %w", collection, err)
	}
	return out, nil
}

// Update merges the given fields into an existing document.
func (s *Service) Update(ctx context.Context, collection, id, partialJSON string) (map[string]any, error) {
	if err := requireIDs(collection, id); err != nil {
		return nil, err
	}
	partial, err := domain.DecodeObject("partial_document_json", partialJSON)
	if err != nil {
		return nil, err
	}
	out, err := s.gw.UpdateDocument(ctx, collection, id, partial)
	if err != nil {
		return nil, fmt.Errorf("update document %s/%s: %w", collection, id, err)
	}
	return out, nil
}

// Delete removes a document by id.
func (s *Service) Delete(ctx context.Context, collection, id string) (map[string]any, error) {
	if err := requireIDs(collection, id); err != nil {
		return nil, err
	}
	out, err := s.gw.DeleteDocument(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	return out, nil
}

// DeleteByFilter removes every document matching filterBy. An empty filter
// is rejected so that a collection is never emptied by accident.
func (s *Service) DeleteByFilter(ctx context.Context, collection, filterBy string) (map[string]any, error) {
	if err := requireCollection(collection); err != nil {
		return nil, err
	}
	if strings.TrimSpace(filterBy) == "" {
		return nil, domain.NewValidationError("filter_by is required")
	}
	out, err := s.gw.DeleteByFilter(ctx, collection, filterBy)
	if err != nil {
		return nil, fmt.Errorf("delete by filter in %s: %w", collection, err)
	}
	return out, nil
}

// Import bulk-loads a JSON array of documents and itemizes the outcome.
func (s *Service) Import(ctx context.Context, collection, documentsJSON, action string) (domdoc.ImportReport, error) {
	if err := requireCollection(collection); err != nil {
		return domdoc.ImportReport{}, err
	}
	act, err := domdoc.ParseAction(action)
	if err != nil {
		return domdoc.ImportReport{}, err
	}
	docs, err := domain.DecodeObjects("documents_json", documentsJSON)
	if err != nil {
		return domdoc.ImportReport{}, err
	}
	if len(docs) == 0 {
		return domdoc.Summarize(0, nil), nil
	}

	statuses, err := s.gw.Import(ctx, collection, docs, act)
	if err != nil {
		return domdoc.ImportReport{}, fmt.Errorf("import into %s: %w", collection, err)
	}
	return domdoc.Summarize(len(docs), statuses), nil
}

// Export is the capped view of an export.
type Export struct {
	TotalExported  int              `json:"total_exported"`
	DocumentsShown int              `json:"documents_shown"`
	Documents      []map[string]any `json:"documents"`
	Truncated      bool             `json:"truncated"`
}

// ExportOptions narrows an export.
type ExportOptions struct {
	FilterBy      string
	IncludeFields string
	ExcludeFields string
}

// Export returns up to ExportLimit documents of a collection along with the
// number of records the engine exported.
func (s *Service) Export(ctx context.Context, collection string, opts ExportOptions) (Export, error) {
	if err := requireCollection(collection); err != nil {
		return Export{}, err
	}
	res, err := s.gw.Export(ctx, collection, domdoc.ExportOptions{
		FilterBy:      opts.FilterBy,
		IncludeFields: opts.IncludeFields,
		ExcludeFields: opts.ExcludeFields,
		Limit:         ExportLimit,
	})
	if err != nil {
		return Export{}, fmt.Errorf("export %s: %w", collection, err)
	}

	docs := res.Documents
	if docs == nil {
		docs = []map[string]any{}
	}
	return Export{
		TotalExported:  res.Total,
		DocumentsShown: len(docs),
		Documents:      docs,
		Truncated:      res.Total > ExportLimit,
	}, nil
}

func parseDocument(collection, arg, raw string) (map[string]any, error) {
	if err := requireCollection(collection); err != nil {
		return nil, err
	}
	return domain.DecodeObject(arg, raw)
}

func requireCollection(collection string) error {
	if strings.TrimSpace(collection) == "" {
		return domain.NewValidationError("collection name is required")
	}
	return nil
}

func requireIDs(collection, id string) error {
	if err := requireCollection(collection); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError("document id is required")
	}
	return nil
}
