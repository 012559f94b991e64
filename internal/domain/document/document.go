// Package document holds the bulk import and export value types shared by
// the document use case and the engine gateway.
package document

import (
	"github.com/kailas-cloud/typesense-mcp/internal/domain"
)

// Action selects how an import treats existing ids.
type Action string

// Import actions.
const (
	ActionCreate Action = "create"
	ActionUpsert Action = "upsert"
	ActionUpdate Action = "update"
)

// ParseAction validates an import action. An empty string means upsert.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case "":
		return ActionUpsert, nil
	case ActionCreate, ActionUpsert, ActionUpdate:
		return a, nil
	default:
		return "", domain.NewValidationError("action must be one of create, upsert, update; got %q", s)
	}
}

// ImportFailure is one rejected document of an import.
type ImportFailure struct {
	Index int `json:"index"`
	Error any `json:"error"`
}

// ImportReport itemizes an import.
type ImportReport struct {
	Total     int             `json:"total"`
	Successes int             `json:"successes"`
	Failures  []ImportFailure `json:"failures"`
}

// Summarize folds the engine's per-line statuses into a report. A status
// counts as a failure only when it carries "success": false.
func Summarize(total int, statuses []map[string]any) ImportReport {
	r := ImportReport{Total: total, Failures: []ImportFailure{}}
	for i, st := range statuses {
		if ok, isBool := st["success"].(bool); isBool && !ok {
			msg, found := st["error"]
			if !found {
				msg = "unknown"
			}
			r.Failures = append(r.Failures, ImportFailure{Index: i, Error: msg})
			continue
		}
		r.Successes++
	}
	return r
}

// ExportOptions narrows an export.
type ExportOptions struct {
	FilterBy      string
	IncludeFields string
	ExcludeFields string
	// Limit caps how many documents are decoded; 0 decodes all.
	Limit int
}

// ExportResult is the outcome of an export. Total counts every exported
// record, including those beyond Limit.
type ExportResult struct {
	Total     int
	Documents []map[string]any
}
