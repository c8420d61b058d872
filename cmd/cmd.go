// Package cmd defines the command-line interface for aieval.
package cmd

import (
	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(prCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(panelCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("exclude-ext", "", "Comma-separated file extensions to skip (e.g. .js,.css)")
	rootCmd.PersistentFlags().String("exclude-folder", "", "Comma-separated folder names to skip anywhere in the tree")
	rootCmd.PersistentFlags().IntP("concurrency", "c", contract.DefaultConcurrency, "Maximum number of files evaluated at the same time")
	rootCmd.PersistentFlags().String("provider", string(schema.AzureProvider), "Model provider: azure or openai or anthropic or google")
	rootCmd.PersistentFlags().StringP("model", "m", "", "Model or Azure deployment name")
	rootCmd.PersistentFlags().String("endpoint", "", "Azure OpenAI endpoint URL")
	rootCmd.PersistentFlags().String("api-key", "", "Provider API key (prefer the environment variable)")
	rootCmd.PersistentFlags().String("api-version", contract.DefaultAPIVersion, "Azure OpenAI API version")
	rootCmd.PersistentFlags().String("base-url", "", "Override the provider base URL")
	rootCmd.PersistentFlags().Int("max-retries", contract.DefaultMaxRetries, "Retries for throttled or failed completions")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Timeout of a single completion attempt")
	rootCmd.PersistentFlags().Bool("strict-schema", false, "Ask for a strict JSON schema instead of plain JSON mode")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Bool("detail", false, "Print one block per file instead of a table")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Diagnostic log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Score cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Scan history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for scan history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of prCmd to Viper
	prCmd.Flags().Bool("evaluate", false, "Evaluate the downloaded files after the download")
	prCmd.Flags().Bool("keep", false, "Keep the download folder after an evaluation")
	prCmd.Flags().String("devops-pat", "", "Azure DevOps personal access token (prefer AZURE_DEVOPS_PAT)")
	prCmd.Flags().String("devops-url", "", "Azure DevOps base URL override")
	if err := viper.BindPFlags(prCmd.Flags()); err != nil {
		contract.LogFatal("Error binding pr flags", err)
	}

	// Bind all flags of chatCmd to Viper
	chatCmd.Flags().String("name", contract.DefaultChatName, "Name of the chat agent")
	chatCmd.Flags().String("instructions", contract.DefaultChatInstructions, "System instructions of the chat agent")
	if err := viper.BindPFlags(chatCmd.Flags()); err != nil {
		contract.LogFatal("Error binding chat flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
