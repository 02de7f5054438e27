package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dhyanesh27/evotrack/core"
	"github.com/Dhyanesh27/evotrack/core/agg"
	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     *core.Manager
	store   contract.CommitStore
	cache   contract.CacheStore
}

func (h *toolHandler) handleExtractRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	locator := request.GetString("repo", "")
	if locator == "" {
		return mcp.NewToolResultError("repo is required"), nil
	}

	handle := h.mgr.StartExtraction(context.Background(), locator)
	if request.GetBool("wait", false) {
		status, ok := h.mgr.Wait(handle)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown extraction handle %q", handle)), nil
		}
		return toolResultJSON(status)
	}

	status, _ := h.mgr.Status(handle)
	return toolResultJSON(status)
}

func (h *toolHandler) handleGetExtractionStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handle := request.GetString("handle", "")
	status, ok := h.mgr.Status(handle)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown extraction handle %q", handle)), nil
	}
	return toolResultJSON(status)
}

func (h *toolHandler) handleCancelExtraction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handle := request.GetString("handle", "")
	if !h.mgr.Cancel(handle) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown extraction handle %q", handle)), nil
	}
	status, _ := h.mgr.Wait(handle)
	return toolResultJSON(status)
}

func (h *toolHandler) handleGetActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, repoID, errResult := h.queryConfig(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := agg.CachedQuery(ctx, h.store, h.cache, repoID, cfg.Filter())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("activity query failed: %v", err)), nil
	}
	result.Authors = nil
	result.Churn = nil
	return toolResultJSON(result)
}

func (h *toolHandler) handleGetAuthors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, repoID, errResult := h.queryConfig(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := agg.CachedQuery(ctx, h.store, h.cache, repoID, cfg.Filter())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("author query failed: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 && len(result.Authors) > l {
		result.Authors = result.Authors[:l]
	}
	result.Activity = nil
	result.Churn = nil
	return toolResultJSON(result)
}

func (h *toolHandler) handleGetChurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, repoID, errResult := h.queryConfig(request)
	if errResult != nil {
		return errResult, nil
	}
	if w := request.GetInt("window", 0); w > 0 {
		cfg.Window = w
	}

	result, err := agg.CachedQuery(ctx, h.store, h.cache, repoID, cfg.Filter())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("churn query failed: %v", err)), nil
	}
	result.Activity = nil
	result.Authors = nil
	return toolResultJSON(result)
}

// queryConfig clones the base config with the request's query overrides
// applied, resolving the repo locator to its repository id.
func (h *toolHandler) queryConfig(request mcp.CallToolRequest) (*contract.Config, string, *mcp.CallToolResult) {
	locator := request.GetString("repo", "")
	if locator == "" {
		return nil, "", mcp.NewToolResultError("repo is required")
	}
	repo := core.RepositoryFromLocator(locator)

	cfg := h.baseCfg.Clone()
	input := &contract.ConfigRawInput{
		Backend:   string(cfg.Backend),
		DBConnect: cfg.DBConnect,
		Period:    request.GetString("period", string(cfg.Period)),
		Since:     request.GetString("since", ""),
		Until:     request.GetString("until", ""),
		Author:    request.GetString("author", ""),
	}
	validated, err := contract.Validate(input)
	if err != nil {
		return nil, "", mcp.NewToolResultError(fmt.Sprintf("invalid query parameters: %v", err))
	}
	cfg.Period = validated.Period
	cfg.Since = validated.Since
	cfg.Until = validated.Until
	cfg.Author = validated.Author
	return cfg, repo.ID, nil
}

// toolResultJSON marshals a payload as indented JSON tool output.
func toolResultJSON(payload any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
