package typesense

// Op names identify gateway operations in errors, logs and metrics.
const (
	OpHealth           = "health"
	OpListCollections  = "list_collections"
	OpGetCollection    = "get_collection"
	OpCreateCollection = "create_collection"
	OpUpdateCollection = "update_collection"
	OpDeleteCollection = "delete_collection"
	OpSearch           = "search"
	OpMultiSearch      = "multi_search"
	OpGetDocument      = "get_document"
	OpCreateDocument   = "create_document"
	OpUpsertDocument   = "upsert_document"
	OpUpdateDocument   = "update_document"
	OpDeleteDocument   = "delete_document"
	OpDeleteByFilter   = "delete_documents"
	OpImport           = "import_documents"
	OpExport           = "export_documents"
	OpCreateNLModel    = "create_nl_model"
	OpListNLModels     = "list_nl_models"
	OpGetNLModel       = "get_nl_model"
	OpUpdateNLModel    = "update_nl_model"
	OpDeleteNLModel    = "delete_nl_model"
)

// Error wraps a gateway failure with the operation name. Err always unwraps
// to domain.ErrConnectivity, domain.ErrEngine, domain.ErrValidation (for
// parameters the engine client cannot carry) or a context error.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
