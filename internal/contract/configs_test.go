package contract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/aieval/schema"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation, pointed at dir.
func validInput(dir string) *ConfigRawInput {
	return &ConfigRawInput{
		ScanRootStr:  dir,
		Concurrency:  DefaultConcurrency,
		Provider:     string(schema.AzureProvider),
		Model:        "gpt-4o",
		Output:       string(schema.TextOut),
		Color:        "yes",
		LogLevel:     "warn",
		CacheBackend: string(schema.NoneBackend),
	}
}

func TestProcessAndValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{
			name:   "valid minimal config",
			mutate: func(*ConfigRawInput) {},
		},
		{
			name:        "zero concurrency",
			mutate:      func(in *ConfigRawInput) { in.Concurrency = 0 },
			expectError: true,
		},
		{
			name:        "concurrency too large",
			mutate:      func(in *ConfigRawInput) { in.Concurrency = MaxConcurrency + 1 },
			expectError: true,
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: true,
		},
		{
			name:        "parquet without output file",
			mutate:      func(in *ConfigRawInput) { in.Output = "parquet" },
			expectError: true,
		},
		{
			name: "parquet with output file",
			mutate: func(in *ConfigRawInput) {
				in.Output = "parquet"
				in.OutputFile = filepath.Join(dir, "out.parquet")
			},
		},
		{
			name:        "invalid provider",
			mutate:      func(in *ConfigRawInput) { in.Provider = "cohere" },
			expectError: true,
		},
		{
			name:        "invalid color",
			mutate:      func(in *ConfigRawInput) { in.Color = "sometimes" },
			expectError: true,
		},
		{
			name:        "invalid log level",
			mutate:      func(in *ConfigRawInput) { in.LogLevel = "loud" },
			expectError: true,
		},
		{
			name:        "invalid timeout",
			mutate:      func(in *ConfigRawInput) { in.Timeout = "soon" },
			expectError: true,
		},
		{
			name:        "negative retries",
			mutate:      func(in *ConfigRawInput) { in.MaxRetries = -1 },
			expectError: true,
		},
		{
			name:        "missing folder",
			mutate:      func(in *ConfigRawInput) { in.ScanRootStr = filepath.Join(dir, "missing") },
			expectError: true,
		},
		{
			name:        "mysql without connection string",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = "mysql" },
			expectError: true,
		},
		{
			name: "duplicate panel agents",
			mutate: func(in *ConfigRawInput) {
				in.Panel.Agents = []schema.Agent{{Name: "a"}, {Name: "a"}}
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(dir)
			tt.mutate(input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	dir := t.TempDir()
	input := validInput(dir)
	input.Provider = ""
	input.LogLevel = ""

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.AzureProvider, cfg.Provider)
	assert.Equal(t, DefaultAPIVersion, cfg.APIVersion)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, logrus.WarnLevel, cfg.LogLevel)
	assert.Equal(t, DefaultChatName, cfg.ChatName)
	assert.Equal(t, DefaultChatInstructions, cfg.ChatInstructions)
	assert.Equal(t, DefaultPanelAgents, cfg.PanelAgents)
	assert.Equal(t, schema.NoneBackend, cfg.HistoryBackend)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.ScanRoot)
}

func TestProcessAndValidateExcludes(t *testing.T) {
	input := validInput(t.TempDir())
	input.ExcludeExt = "JS, .ts,,  html "
	input.ExcludeFolder = "dist, build"
	input.Timeout = "30s"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, []string{".js", ".ts", ".html"}, cfg.ExcludeExtensions)
	assert.Equal(t, []string{"dist", "build"}, cfg.ExcludeFolders)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestProcessAndValidateRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(file, []byte("print(1)"), 0o644))

	err := ProcessAndValidate(&Config{}, validInput(file))
	assert.ErrorContains(t, err, "not a folder")
}

func TestValidateBackendsSharedSQLiteFile(t *testing.T) {
	input := validInput(t.TempDir())
	input.CacheBackend = "sqlite"
	input.HistoryBackend = "sqlite"
	input.CacheDBConnect = "/tmp/same.db"
	input.HistoryDBConnect = "/tmp/same.db"

	err := ProcessAndValidate(&Config{}, input)
	assert.ErrorContains(t, err, "different SQLite database files")

	input.HistoryDBConnect = ""
	assert.NoError(t, ProcessAndValidate(&Config{}, input))
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite any", schema.SQLiteBackend, "", false},
		{"none any", schema.NoneBackend, "whatever", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/db", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/db", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=db", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		ScanRoot:          "/a",
		ExcludeExtensions: []string{".js"},
		PanelAgents:       []schema.Agent{{Name: "x"}},
	}

	clone := cfg.CloneWithScanRoot("/b")
	clone.ExcludeExtensions[0] = ".ts"
	clone.PanelAgents[0].Name = "y"

	assert.Equal(t, "/a", cfg.ScanRoot)
	assert.Equal(t, "/b", clone.ScanRoot)
	assert.Equal(t, ".js", cfg.ExcludeExtensions[0])
	assert.Equal(t, "x", cfg.PanelAgents[0].Name)
}

func TestNormalizeExtensions(t *testing.T) {
	assert.Equal(t, []string{".js", ".css", ".tsx"}, NormalizeExtensions(" js, .CSS ,,TSX"))
	assert.Nil(t, NormalizeExtensions(""))
	assert.Equal(t, []string{"dist", "build"}, SplitList("dist, ,build"))
}
