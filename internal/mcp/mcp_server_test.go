package mcp_test

import (
	"context"
	"testing"

	"github.com/Dhyanesh27/evotrack/core"
	"github.com/Dhyanesh27/evotrack/internal/contract"
	mcp_internal "github.com/Dhyanesh27/evotrack/internal/mcp"
	"github.com/Dhyanesh27/evotrack/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	baseCfg := &contract.Config{
		Backend: schema.SQLiteBackend,
		Period:  schema.PeriodDay,
		Window:  4,
	}

	// The manager is only hit after validation passes, so these tests
	// never start an extraction.
	mgr := core.NewManager(core.NewCoordinator(nil, &contract.MockGraphOpener{}, baseCfg))
	s := mcp_internal.NewMCPServer(baseCfg, mgr, nil, nil)

	ctx := context.Background()

	t.Run("extract_repository missing repo", func(t *testing.T) {
		tool := s.GetTool("extract_repository")
		require.NotNil(t, tool, "Tool extract_repository should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "extract_repository",
				Arguments: map[string]any{"repo": ""},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "repo is required")
	})

	t.Run("get_extraction_status unknown handle", func(t *testing.T) {
		tool := s.GetTool("get_extraction_status")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "get_extraction_status",
				Arguments: map[string]any{"handle": "nope"},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "unknown extraction handle")
	})

	t.Run("cancel_extraction unknown handle", func(t *testing.T) {
		tool := s.GetTool("cancel_extraction")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "cancel_extraction",
				Arguments: map[string]any{"handle": "nope"},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "unknown extraction handle")
	})

	t.Run("get_activity missing repo", func(t *testing.T) {
		tool := s.GetTool("get_activity")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "get_activity",
				Arguments: map[string]any{"repo": ""},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "repo is required")
	})

	t.Run("get_activity invalid period", func(t *testing.T) {
		tool := s.GetTool("get_activity")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_activity",
				Arguments: map[string]any{
					"repo":   "/repos/demo",
					"period": "fortnight", // Invalid
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid query parameters")
	})

	t.Run("get_churn invalid time bounds", func(t *testing.T) {
		tool := s.GetTool("get_churn")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_churn",
				Arguments: map[string]any{
					"repo":  "/repos/demo",
					"since": "2024-06-01",
					"until": "2024-01-01", // Before since
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid query parameters")
	})

	t.Run("get_authors missing repo", func(t *testing.T) {
		tool := s.GetTool("get_authors")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "get_authors",
				Arguments: map[string]any{"repo": ""},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "repo is required")
	})
}
