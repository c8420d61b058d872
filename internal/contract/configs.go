package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/aieval/schema"
	"github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultConcurrency = 5
	MaxConcurrency     = 64
	DefaultAPIVersion  = "2024-02-15-preview"
	DefaultMaxRetries  = 3
	DefaultTimeout     = 2 * time.Minute
	DefaultLogLevel    = "warn"
	DefaultChatName    = "HaikuBot"
)

// DefaultChatInstructions are the system instructions of the chat agent.
const DefaultChatInstructions = "You are an upbeat assistant that writes beautifully."

// DefaultPanelAgents are the participants of a panel discussion when none are configured.
var DefaultPanelAgents = []schema.Agent{
	{
		Name:         "researcher",
		Instructions: "You're an expert market and product researcher. Given a prompt, provide concise, factual insights, opportunities, and risks.",
	},
	{
		Name:         "marketer",
		Instructions: "You're a creative marketing strategist. Craft compelling value propositions and target messaging aligned to the prompt.",
	},
	{
		Name:         "legal",
		Instructions: "You're a cautious legal/compliance reviewer. Highlight constraints, disclaimers, and policy concerns based on the prompt.",
	},
}

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// PanelRawInput holds panel settings from the YAML config file.
type PanelRawInput struct {
	Agents []schema.Agent `mapstructure:"agents"`
}

// Config holds the runtime configuration for a scan.
// This struct remains the "final, validated" config.
type Config struct {
	ScanRoot          string
	ExcludeExtensions []string
	ExcludeFolders    []string
	Concurrency       int

	Provider     schema.Provider
	Model        string
	Endpoint     string
	APIKey       string // Please use env var as this is plaintext
	APIVersion   string
	BaseURL      string
	MaxRetries   int
	Timeout      time.Duration
	StrictSchema bool

	Output     schema.OutputMode
	OutputFile string
	Detail     bool
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   logrus.Level

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	DevOpsPAT     string // Please use env var as this is plaintext
	DevOpsBaseURL string

	ChatName         string
	ChatInstructions string
	PanelAgents      []schema.Agent
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	ScanRootStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	ExcludeExt       string `mapstructure:"exclude-ext"`
	ExcludeFolder    string `mapstructure:"exclude-folder"`
	Concurrency      int    `mapstructure:"concurrency"`
	Provider         string `mapstructure:"provider"`
	Model            string `mapstructure:"model"`
	Endpoint         string `mapstructure:"endpoint"`
	APIKey           string `mapstructure:"api-key"`
	APIVersion       string `mapstructure:"api-version"`
	BaseURL          string `mapstructure:"base-url"`
	MaxRetries       int    `mapstructure:"max-retries"`
	Timeout          string `mapstructure:"timeout"`
	StrictSchema     bool   `mapstructure:"strict-schema"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Detail           bool   `mapstructure:"detail"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	LogLevel         string `mapstructure:"log-level"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from prCmd.Flags() ---
	DevOpsPAT string `mapstructure:"devops-pat"`
	DevOpsURL string `mapstructure:"devops-url"`

	// --- Fields from chatCmd.Flags() ---
	Name         string `mapstructure:"name"`
	Instructions string `mapstructure:"instructions"`

	// --- Panel participants from config file ---
	Panel PanelRawInput `mapstructure:"panel"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.ExcludeExtensions = slices.Clone(c.ExcludeExtensions)
	clone.ExcludeFolders = slices.Clone(c.ExcludeFolders)
	clone.PanelAgents = slices.Clone(c.PanelAgents)
	return &clone
}

// CloneWithScanRoot creates a copy of the Config pointed at another folder.
func (c *Config) CloneWithScanRoot(root string) *Config {
	clone := c.Clone()
	clone.ScanRoot = root
	return clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processOracleConfig(cfg, input); err != nil {
		return err
	}
	if err := processAgents(cfg, input); err != nil {
		return err
	}
	if err := resolveScanRoot(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBackend maps a raw backend string to a DatabaseBackend. Empty means none.
func ParseBackend(raw string) (schema.DatabaseBackend, error) {
	if raw == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(raw))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", raw)
	}
	return backend, nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	backend, err := ParseBackend(input.CacheBackend)
	if err != nil {
		return fmt.Errorf("invalid --cache-backend: %w", err)
	}
	cfg.CacheBackend = backend
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	backend, err = ParseBackend(input.HistoryBackend)
	if err != nil {
		return fmt.Errorf("invalid --history-backend: %w", err)
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Cache and history must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	levelStr := input.LogLevel
	if levelStr == "" {
		levelStr = DefaultLogLevel
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid --log-level value: %w", err)
	}
	cfg.LogLevel = level

	// --- 1. Concurrency Validation ---
	if input.Concurrency <= 0 || input.Concurrency > MaxConcurrency {
		return fmt.Errorf("concurrency must be greater than 0 and cannot exceed %d (received %d)", MaxConcurrency, input.Concurrency)
	}
	cfg.Concurrency = input.Concurrency

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required when using parquet output")
	}

	// --- 3. Backend Validation ---
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}

	// --- 4. Excludes Processing ---
	cfg.ExcludeExtensions = NormalizeExtensions(input.ExcludeExt)
	cfg.ExcludeFolders = SplitList(input.ExcludeFolder)

	return nil
}

// processOracleConfig handles provider selection and its connection settings.
func processOracleConfig(cfg *Config, input *ConfigRawInput) error {
	provider := input.Provider
	if provider == "" {
		provider = string(schema.AzureProvider)
	}
	cfg.Provider = schema.Provider(strings.ToLower(provider))
	if _, ok := schema.ValidProviders[cfg.Provider]; !ok {
		return fmt.Errorf("invalid provider '%s'. must be azure, openai, anthropic, google", input.Provider)
	}

	cfg.Model = strings.TrimSpace(input.Model)
	cfg.Endpoint = strings.TrimSpace(input.Endpoint)
	cfg.APIKey = input.APIKey
	cfg.BaseURL = strings.TrimSpace(input.BaseURL)
	cfg.StrictSchema = input.StrictSchema

	cfg.APIVersion = input.APIVersion
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	if input.MaxRetries < 0 {
		return fmt.Errorf("max-retries cannot be negative (received %d)", input.MaxRetries)
	}
	cfg.MaxRetries = input.MaxRetries

	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout value: %w", err)
		}
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive (received %s)", input.Timeout)
		}
		cfg.Timeout = timeout
	}

	cfg.DevOpsPAT = input.DevOpsPAT
	cfg.DevOpsBaseURL = strings.TrimRight(strings.TrimSpace(input.DevOpsURL), "/")

	return nil
}

// processAgents fills chat and panel participants from the raw input.
func processAgents(cfg *Config, input *ConfigRawInput) error {
	cfg.ChatName = input.Name
	if cfg.ChatName == "" {
		cfg.ChatName = DefaultChatName
	}
	cfg.ChatInstructions = input.Instructions
	if cfg.ChatInstructions == "" {
		cfg.ChatInstructions = DefaultChatInstructions
	}

	if len(input.Panel.Agents) == 0 {
		cfg.PanelAgents = slices.Clone(DefaultPanelAgents)
		return nil
	}

	seen := make(map[string]struct{}, len(input.Panel.Agents))
	cfg.PanelAgents = nil
	for i, agent := range input.Panel.Agents {
		name := strings.TrimSpace(agent.Name)
		if name == "" {
			return fmt.Errorf("panel agent %d is missing a name", i+1)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("panel agent name %q is used more than once", name)
		}
		seen[name] = struct{}{}
		cfg.PanelAgents = append(cfg.PanelAgents, schema.Agent{Name: name, Instructions: agent.Instructions})
	}
	return nil
}

// resolveScanRoot resolves the folder to scan into an absolute directory path.
func resolveScanRoot(cfg *Config, input *ConfigRawInput) error {
	searchPath := input.ScanRootStr
	if searchPath == "" {
		searchPath = "."
	}
	absPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absPath = filepath.Clean(absPath)

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("cannot access folder %s: %w", searchPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a folder", searchPath)
	}

	cfg.ScanRoot = absPath
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// NormalizeExtensions splits a comma-separated extension list into lowercase
// extensions with a leading dot.
func NormalizeExtensions(s string) []string {
	var exts []string
	for _, ext := range SplitList(s) {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

// SplitList splits a comma-separated list and drops empty entries.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
