// Package mcp exposes the search, RAG, collection, document and NL model
// operations as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/typesense-mcp/internal/logger"
	"github.com/kailas-cloud/typesense-mcp/internal/metrics"
	collectionuc "github.com/kailas-cloud/typesense-mcp/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/typesense-mcp/internal/usecase/document"
	healthuc "github.com/kailas-cloud/typesense-mcp/internal/usecase/health"
	nlmodeluc "github.com/kailas-cloud/typesense-mcp/internal/usecase/nlmodel"
	raguc "github.com/kailas-cloud/typesense-mcp/internal/usecase/rag"
	searchuc "github.com/kailas-cloud/typesense-mcp/internal/usecase/search"
)

const instructions = `Typesense MCP server: a search engine interface for RAG applications.

Capabilities:
1. Hybrid search: keyword plus vector ranking. Use hybrid_search with both text
   and embedding fields in query_by, or set embedding_field explicitly.
2. Natural language search: register a model with create_nl_search_model, then
   use natural_language_search to let it derive filters and sorts.
3. RAG retrieval: search a metadata collection and fetch the linked chunks with
   rag_search_and_retrieve_chunks, or search chunks directly with
   rag_hybrid_chunk_search.
4. Collection management: list, describe, analyze, create and modify collections.
5. Document operations: CRUD, bulk import and export.

Typical RAG workflow:
1. analyze_collection to learn the available collections and fields.
2. hybrid_search or natural_language_search to find relevant documents.
3. rag_search_and_retrieve_chunks or get_document_chunks to read their content.

Filter syntax: field:=value, field:!=value, field:>N, field:<N, field:[a,b],
field:[min..max]. Combine with && (AND) and || (OR).`

// Services are the use cases served as tools.
type Services struct {
	Search      *searchuc.Service
	RAG         *raguc.Service
	Collections *collectionuc.Service
	Documents   *documentuc.Service
	NLModels    *nlmodeluc.Service
	Health      *healthuc.Service
}

// Server registers every tool on an MCP server.
type Server struct {
	mcp         *server.MCPServer
	search      *searchuc.Service
	rag         *raguc.Service
	collections *collectionuc.Service
	documents   *documentuc.Service
	nlModels    *nlmodeluc.Service
	health      *healthuc.Service
	logger      *zap.Logger
}

// toolFunc is a tool body. Its result is returned to the caller as JSON.
type toolFunc func(ctx context.Context, in *argReader) (any, error)

type toolEntry struct {
	tool mcp.Tool
	fn   toolFunc
}

// NewServer creates the MCP server with all tools registered.
func NewServer(name, version string, svc Services, logger *zap.Logger) *Server {
	s := &Server{
		search:      svc.Search,
		rag:         svc.RAG,
		collections: svc.Collections,
		documents:   svc.Documents,
		nlModels:    svc.NLModels,
		health:      svc.Health,
		logger:      logger,
	}
	s.mcp = server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)

	for _, t := range s.tools() {
		s.mcp.AddTool(t.tool, s.instrument(t.tool.Name, t.fn))
	}
	return s
}

func (s *Server) tools() []toolEntry {
	var out []toolEntry
	out = append(out, s.collectionTools()...)
	out = append(out, s.searchTools()...)
	out = append(out, s.ragTools()...)
	out = append(out, s.documentTools()...)
	return append(out, s.nlModelTools()...)
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// ServeStdio serves the protocol over the given streams until ctx is done
// or the input closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	return stdio.Listen(ctx, in, out) //nolint:wrapcheck // transport error returned as is
}

// HTTPHandler returns the streamable HTTP transport for mounting on a router.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// instrument runs fn with a per-call logger, records metrics and converts
// the outcome into a tool result. Failures are reported inside the result,
// never as protocol errors, so the calling model can read them.
func (s *Server) instrument(name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		ctx = logger.ContextWithLogger(ctx, s.logger)
		ctx, log := logger.With(ctx, zap.String("tool", name), zap.String("call_id", uuid.NewString()))

		out, err := fn(ctx, newArgReader(req.GetArguments()))
		var res *mcp.CallToolResult
		if err == nil {
			res, err = textResult(out)
		}

		status, level := "ok", zapcore.InfoLevel
		if err != nil {
			mErr := toMCPError(err)
			status = mErr.Type
			if mErr.Code == CodeInternalError || mErr.Code == CodeConnectivity {
				level = zapcore.ErrorLevel
			} else {
				level = zapcore.WarnLevel
			}
			res = mcp.NewToolResultError(mErr.JSON())
		}

		elapsed := time.Since(start)
		metrics.ToolCallsTotal.WithLabelValues(name, status).Inc()
		metrics.ToolCallDuration.WithLabelValues(name).Observe(elapsed.Seconds())

		fields := []zap.Field{zap.String("status", status), zap.Duration("latency", elapsed)}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		log.Log(level, "tool_call", fields...)

		return res, nil
	}
}

func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, &MCPError{Code: CodeInternalError, Type: "internal_error", Message: "encode result: " + err.Error()}
	}
	return mcp.NewToolResultText(string(data)), nil
}
