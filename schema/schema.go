// Package schema has configs, models and constants for all parts of aieval.
package schema

// FileEvaluation is the assessment of a single source file.
// It is created once per eligible file and never mutated afterwards.
type FileEvaluation struct {
	RelativePath string `json:"relative_path" yaml:"relative_path"` // Path relative to the scan root
	Score        int    `json:"score" yaml:"score"`                 // Likelihood of AI generation (1-10)
	Reason       string `json:"reason" yaml:"reason"`               // Oracle justification or a diagnostic
	FileType     string `json:"file_type" yaml:"file_type"`         // Extension including the leading dot
}

// OverallEvaluation is the final report of a folder scan.
// FileEvaluations are kept in completion order.
type OverallEvaluation struct {
	Score           int              `json:"score" yaml:"score"`
	Reason          string           `json:"reason" yaml:"reason"`
	TotalFiles      int              `json:"total_files" yaml:"total_files"`
	FileEvaluations []FileEvaluation `json:"file_evaluations" yaml:"file_evaluations"`
}

// ScoreResponse is the structured reply expected from the oracle.
type ScoreResponse struct {
	Score  int    `json:"score" jsonschema:"minimum=1,maximum=10,description=Likelihood that the code was AI-generated"`
	Reason string `json:"reason" jsonschema:"description=Detailed explanation of the reasoning"`
}

// CompletionRequest is a single request to a text-completion oracle.
type CompletionRequest struct {
	Model       string  // Model or deployment identifier
	System      string  // System instruction
	Prompt      string  // User prompt
	JSON        bool    // Ask the oracle for a single JSON object
	Temperature float64 // Sampling temperature
	Schema      any     // Optional JSON schema enforced by providers that support it
	SchemaName  string  // Name attached to Schema
}

// Agent is a named participant with its own system instructions.
type Agent struct {
	Name         string `mapstructure:"name" json:"name" yaml:"name"`
	Instructions string `mapstructure:"instructions" json:"instructions" yaml:"instructions"`
}

// ChatMessage is one message of an aggregated conversation.
// An empty Author denotes the user.
type ChatMessage struct {
	Author string `json:"author" yaml:"author"`
	Text   string `json:"text" yaml:"text"`
}

// PanelResult is the merged conversation produced by a panel run.
type PanelResult struct {
	Prompt   string        `json:"prompt" yaml:"prompt"`
	Messages []ChatMessage `json:"messages" yaml:"messages"`
}
