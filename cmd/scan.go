package cmd

import (
	"github.com/huangsam/aieval/core"
	"github.com/huangsam/aieval/internal/contract"
	"github.com/spf13/cobra"
)

// scanCmd evaluates every code file of a folder.
var scanCmd = &cobra.Command{
	Use:   "scan [folder]",
	Short: "Score the code files of a folder for AI generation.",
	Long: `Walk a folder, send each code file to the configured model and aggregate
the per-file scores into one overall verdict.

Each file gets a score from 1 (almost certainly human) to 10 (almost
certainly AI generated) with a short reason. Files that cannot be read or
scored fall back to a score of 5. The overall score is the rounded mean.

Examples:
  # Scan the current folder with an Azure deployment
  aieval scan --model gpt-4o

  # Skip generated assets and vendored code
  aieval scan ./service --exclude-ext .js,.css --exclude-folder vendor,node_modules

  # Use another provider
  aieval scan --provider anthropic --model claude-sonnet-4-5

  # Keep a report for later
  aieval scan --output json --output-file report.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		o, err := newOracle()
		if err != nil {
			contract.LogFatal("Cannot create model client", err)
		}
		if err := core.ExecuteScan(rootCtx, cfg, o, cacheManager); err != nil {
			contract.LogFatal("Cannot run folder scan", err)
		}
	},
}
