package cmd

import (
	"runtime"

	"github.com/huangsam/aieval/schema"
	"github.com/spf13/cobra"
)

// versionCmd shows the build details and the supported providers.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of aieval.",
	Long: `Display build details together with the supported model providers
and cache backends, for bug reports and compatibility checks.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("aieval %s (%s, built %s)\n", version, commit, date)
		cmd.Printf("  Runtime:   %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		cmd.Printf("  Providers: %s, %s, %s, %s\n", schema.AzureProvider, schema.OpenAIProvider, schema.AnthropicProvider, schema.GoogleProvider)
		cmd.Printf("  Backends:  %s, %s, %s, %s\n", schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend, schema.NoneBackend)
	},
}
