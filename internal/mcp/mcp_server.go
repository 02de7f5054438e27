// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/Dhyanesh27/evotrack/core"
	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the EvoTrack MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr *core.Manager, store contract.CommitStore, cache contract.CacheStore) *server.MCPServer {
	s := server.NewMCPServer(
		"EvoTrack Extraction Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		store:   store,
		cache:   cache,
	}

	// --- 1. Tool: extract_repository ---
	s.AddTool(mcp.NewTool("extract_repository",
		mcp.WithDescription("Start an incremental commit-history extraction for a repository. Returns a handle for polling."),
		mcp.WithString("repo", mcp.Description("Local path or clone URL of the Git repository."), mcp.Required()),
		mcp.WithBoolean("wait", mcp.Description("Block until the extraction finishes and return the final report.")),
	), h.handleExtractRepository)

	// --- 2. Tool: get_extraction_status ---
	s.AddTool(mcp.NewTool("get_extraction_status",
		mcp.WithDescription("Poll the status and summary report of a previously started extraction."),
		mcp.WithString("handle", mcp.Description("Handle returned by extract_repository."), mcp.Required()),
	), h.handleGetExtractionStatus)

	// --- 3. Tool: cancel_extraction ---
	s.AddTool(mcp.NewTool("cancel_extraction",
		mcp.WithDescription("Cancel a running extraction. Already persisted batches are kept."),
		mcp.WithString("handle", mcp.Description("Handle returned by extract_repository."), mcp.Required()),
	), h.handleCancelExtraction)

	// --- 4. Tool: get_activity ---
	s.AddTool(mcp.NewTool("get_activity",
		mcp.WithDescription("Get a gap-free commit activity time series for an extracted repository."),
		mcp.WithString("repo", mcp.Description("Repository locator used during extraction."), mcp.Required()),
		mcp.WithString("period", mcp.Description("Bucketing period. Defaults to 'day'."), mcp.Enum("day", "week", "month")),
		mcp.WithString("since", mcp.Description("Inclusive lower bound (RFC3339 or YYYY-MM-DD).")),
		mcp.WithString("until", mcp.Description("Inclusive upper bound (RFC3339 or YYYY-MM-DD).")),
		mcp.WithString("author", mcp.Description("Restrict to one resolved author id.")),
	), h.handleGetActivity)

	// --- 5. Tool: get_authors ---
	s.AddTool(mcp.NewTool("get_authors",
		mcp.WithDescription("Get contributor totals ranked by commit count, with identities resolved across aliases."),
		mcp.WithString("repo", mcp.Description("Repository locator used during extraction."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of contributors returned.")),
	), h.handleGetAuthors)

	// --- 6. Tool: get_churn ---
	s.AddTool(mcp.NewTool("get_churn",
		mcp.WithDescription("Get the churn trend with a rolling window for spike detection."),
		mcp.WithString("repo", mcp.Description("Repository locator used during extraction."), mcp.Required()),
		mcp.WithString("period", mcp.Description("Bucketing period. Defaults to 'day'."), mcp.Enum("day", "week", "month")),
		mcp.WithNumber("window", mcp.Description("Rolling window size in buckets.")),
	), h.handleGetChurn)

	return s
}

// StartMCPServer starts the EvoTrack MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr *core.Manager, store contract.CommitStore, cache contract.CacheStore) error {
	s := NewMCPServer(baseCfg, mgr, store, cache)
	return server.ServeStdio(s)
}
