package cmd

import (
	"github.com/Dhyanesh27/evotrack/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the EvoTrack MCP server",
	Long:  `Launch an MCP server that lets AI agents run extractions and query activity, contributor, and churn analytics via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Keep stdout clean for the protocol; setup logs go to stderr.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, manager, dataStore, dataStore)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
