package cmd

import (
	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the aieval MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents list, score and
discuss code through standard tools.

Without a usable model configuration only list_code_files works.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		o, err := newOracle()
		if err != nil {
			contract.LogWarn("Starting without a model client", err)
		}
		return mcp.StartMCPServer(rootCtx, cfg, o, cacheManager)
	},
}
