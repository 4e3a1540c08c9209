package cmd

import (
	"github.com/huangsam/leadtime/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [input]",
	Short: "Start the leadtime MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents estimate standard times and check
cycles through the estimate_standard_times and check_cycle tools.

The flags and config file give the defaults of every tool call.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
