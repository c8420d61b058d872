package cmd

import (
	"github.com/huangsam/aieval/core"
	"github.com/huangsam/aieval/internal/contract"
	"github.com/spf13/cobra"
)

// chatCmd sends a single prompt to one agent.
var chatCmd = &cobra.Command{
	Use:   "chat <prompt>",
	Short: "Send one prompt to a single named agent.",
	Long: `Send a prompt to one agent and print its reply.

The agent defaults to a haiku-writing assistant. Override it with
--name and --instructions.

Examples:
  aieval chat "Write a haiku about recursion in programming."
  aieval chat "Summarize Go generics" --name Tutor --instructions "You explain things briefly."`,
	Args:    cobra.ExactArgs(1),
	PreRunE: promptSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		o, err := newOracle()
		if err != nil {
			contract.LogFatal("Cannot create model client", err)
		}
		if err := core.ExecuteChat(rootCtx, cfg, o, args[0]); err != nil {
			contract.LogFatal("Cannot run chat", err)
		}
	},
}

// panelCmd broadcasts a prompt to every panel agent.
var panelCmd = &cobra.Command{
	Use:   "panel <prompt>",
	Short: "Ask a panel of agents the same prompt.",
	Long: `Broadcast one prompt to every panel agent concurrently and print the
conversation in agent order.

The default panel is a researcher, a marketer and a legal reviewer.
Configure your own under 'panel.agents' in .aieval.yaml:

  panel:
    agents:
      - name: architect
        instructions: You review designs for scalability.
      - name: security
        instructions: You look for vulnerabilities.

Examples:
  aieval panel "Pitch a new eco-friendly water bottle."`,
	Args:    cobra.ExactArgs(1),
	PreRunE: promptSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		o, err := newOracle()
		if err != nil {
			contract.LogFatal("Cannot create model client", err)
		}
		if err := core.ExecutePanel(rootCtx, cfg, o, args[0]); err != nil {
			contract.LogFatal("Cannot run panel discussion", err)
		}
	},
}
