package cmd

import (
	"github.com/huangsam/aieval/core"
	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/internal/devops"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// prCmd downloads the changed files of an Azure DevOps pull request.
var prCmd = &cobra.Command{
	Use:   "pr <pull-request-url>",
	Short: "Download the changed files of a pull request, optionally scoring them.",
	Long: `Fetch the files added or edited in the first iteration of an Azure DevOps
pull request into a temporary folder that mirrors the repository layout.

With --evaluate the folder is scanned like 'aieval scan' and removed
afterwards unless --keep is set.

Accepted URL forms:
  https://dev.azure.com/{org}/{project}/_git/{repo}/pullrequest/{id}
  https://{org}.visualstudio.com/{project}/_git/{repo}/pullrequest/{id}

Examples:
  # Download only
  AZURE_DEVOPS_PAT=... aieval pr https://dev.azure.com/acme/web/_git/shop/pullrequest/42

  # Download and evaluate
  aieval pr https://dev.azure.com/acme/web/_git/shop/pullrequest/42 --evaluate --model gpt-4o`,
	Args:    cobra.ExactArgs(1),
	PreRunE: promptSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		opts := core.PullRequestOptions{
			Evaluate: viper.GetBool("evaluate"),
			Keep:     viper.GetBool("keep"),
		}

		var o contract.Oracle
		if opts.Evaluate {
			client, err := newOracle()
			if err != nil {
				contract.LogFatal("Cannot create model client", err)
			}
			o = client
		}

		dl := devops.NewClient(cfg.DevOpsPAT, cfg.DevOpsBaseURL)
		if err := core.ExecutePullRequest(rootCtx, cfg, o, cacheManager, dl, args[0], opts); err != nil {
			contract.LogFatal("Cannot process pull request", err)
		}
	},
}
