// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the public side of the knowledge index to agent
// consumers via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/algiz/internal/index"
	"github.com/starford/algiz/internal/models"
	"github.com/starford/algiz/internal/summarize"
)

// Server wraps the MCP server with Algiz tools. Every tool reads the
// public layer only; private chunks are not reachable over MCP.
type Server struct {
	mcp  *server.MCPServer
	db   *index.DB
	summ summarize.Summarizer
}

// New creates a new MCP server with all Algiz tools registered.
func New(db *index.DB, summ summarize.Summarizer) *Server {
	s := &Server{db: db, summ: summ}

	s.mcp = server.NewMCPServer(
		"Algiz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_index",
		mcp.WithDescription("Keyword search over the public-layer summaries of indexed "+
			"documents. Returns JSON results with path and summary."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search keyword")),
	), s.searchIndex)

	s.mcp.AddTool(mcp.NewTool("summarize_text",
		mcp.WithDescription("Summarize arbitrary text through the local model backend. "+
			"Public mode (the default) redacts names and identifiers; private mode keeps "+
			"all facts. Read the algiz://privacy-model resource for what each mode means."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to summarize")),
		mcp.WithString("mode", mcp.Description("Summary mode: public (default) or private")),
	), s.summarizeText)

	s.mcp.AddTool(mcp.NewTool("read_public_summary",
		mcp.WithDescription("Read the stored public-layer summary for an indexed document. "+
			"Private summaries are not reachable over MCP."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the indexed document")),
	), s.readPublicSummary)

	s.mcp.AddTool(mcp.NewTool("get_privacy_model",
		mcp.WithDescription("Returns the privacy model contract: what the public and "+
			"private layers contain and which surfaces can read each."),
	), s.getPrivacyModel)

	// Resource: privacy model contract.
	s.mcp.AddResource(
		mcp.NewResource("algiz://privacy-model", "Privacy Model",
			mcp.WithResourceDescription("What each summary layer contains and which surfaces may read it."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPrivacyModelResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.SearchPublic(query, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) summarizeText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode := ""
	if m, modeErr := req.RequireString("mode"); modeErr == nil {
		mode = m
	}
	layer, err := models.ParseLayer(mode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary, err := s.summ.Summarize(ctx, text, layer)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(summary), nil
}

func (s *Server) readPublicSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.db.GetDocument(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	// Only the public layer is ever requested here.
	chunk, err := s.db.GetChunk(doc.ID, models.LayerPublic)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no public summary for: %s", path)), nil
	}
	return mcp.NewToolResultText(chunk.Summary), nil
}

func (s *Server) getPrivacyModel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PrivacyModelContract), nil
}

func (s *Server) readPrivacyModelResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "algiz://privacy-model",
			MIMEType: "text/markdown",
			Text:     PrivacyModelContract,
		},
	}, nil
}
