package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// Provider represents the hosted model family used as the scoring oracle.
	Provider string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All oracle providers supported.
const (
	AzureProvider     Provider = "azure" // default
	OpenAIProvider    Provider = "openai"
	AnthropicProvider Provider = "anthropic"
	GoogleProvider    Provider = "google"
)

// Score bounds and the neutral fallback used when a file cannot be judged.
const (
	MinScore      = 1
	MaxScore      = 10
	FallbackScore = 5
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidProviders lists all valid oracle providers.
var ValidProviders = map[Provider]struct{}{
	AzureProvider:     {},
	OpenAIProvider:    {},
	AnthropicProvider: {},
	GoogleProvider:    {},
}

// CodeExtensions is the allow-list of source file extensions considered for evaluation.
var CodeExtensions = map[string]struct{}{
	".py": {}, ".js": {}, ".ts": {}, ".jsx": {}, ".tsx": {}, ".java": {}, ".cpp": {}, ".c": {}, ".cs": {},
	".go": {}, ".rs": {}, ".php": {}, ".rb": {}, ".swift": {}, ".kt": {}, ".scala": {}, ".sh": {},
	".ps1": {}, ".sql": {}, ".html": {}, ".css": {}, ".vue": {}, ".dart": {}, ".r": {}, ".m": {},
}

// DefaultExcludedFolders are folder names that are never descended into.
var DefaultExcludedFolders = []string{".git", "node_modules", "__pycache__", "venv", "env", ".venv"}
