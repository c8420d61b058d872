package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/internal/parquet"
	"github.com/huangsam/aieval/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Widths of the rule lines framing the text report.
const (
	reportRuleWidth = 80
	detailRuleWidth = 40
)

// EvaluationReport is the JSON and YAML document of a folder scan.
type EvaluationReport struct {
	Score           int                             `json:"score" yaml:"score"`
	Label           string                          `json:"label" yaml:"label"`
	Reason          string                          `json:"reason" yaml:"reason"`
	TotalFiles      int                             `json:"total_files" yaml:"total_files"`
	FileEvaluations []schema.EnrichedFileEvaluation `json:"file_evaluations" yaml:"file_evaluations"`
}

// PrintEvaluation outputs the folder report, dispatching based on the output format configured.
func PrintEvaluation(result schema.OverallEvaluation, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, NewEvaluationReport(result))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, NewEvaluationReport(result))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEvaluationCSV(w, result)
		}, "Wrote CSV")
	case schema.ParquetOut:
		rows := parquet.ConvertEvaluations(schema.SortByScore(result.FileEvaluations), time.Now())
		if err := parquet.WriteFileEvaluationsParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEvaluationText(w, result, cfg, duration)
		}, "Wrote report")
	}
}

// NewEvaluationReport ranks the file evaluations of result and labels every score.
func NewEvaluationReport(result schema.OverallEvaluation) EvaluationReport {
	return EvaluationReport{
		Score:           result.Score,
		Label:           schema.GetPlainLabel(result.Score),
		Reason:          result.Reason,
		TotalFiles:      result.TotalFiles,
		FileEvaluations: schema.EnrichEvaluations(result.FileEvaluations),
	}
}

// writeEvaluationCSV writes one row per file, highest score first.
func writeEvaluationCSV(w io.Writer, result schema.OverallEvaluation) error {
	header := []string{"rank", "path", "score", "label", "file_type", "reason"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, e := range schema.EnrichEvaluations(result.FileEvaluations) {
			row := []string{
				strconv.Itoa(e.Rank),
				e.RelativePath,
				strconv.Itoa(e.Score),
				e.Label,
				e.FileType,
				e.Reason,
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeEvaluationText writes the human-readable report.
func writeEvaluationText(w io.Writer, result schema.OverallEvaluation, cfg *contract.Config, duration time.Duration) error {
	rule := strings.Repeat("=", reportRuleWidth)
	_, _ = fmt.Fprintf(w, "\n%s\n", rule)
	_, _ = fmt.Fprintln(w, "AI CODE GENERATION EVALUATION RESULTS")
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintf(w, "\nOVERALL SCORE: %d/10 (%s)\n", result.Score, scoreLabel(result.Score, cfg))
	_, _ = fmt.Fprintf(w, "REASON: %s\n", result.Reason)
	_, _ = fmt.Fprintf(w, "TOTAL FILES ANALYZED: %d\n", result.TotalFiles)

	if len(result.FileEvaluations) > 0 {
		_, _ = fmt.Fprintln(w, "\nINDIVIDUAL FILE SCORES:")
		if cfg.Detail {
			writeEvaluationDetail(w, result.FileEvaluations)
		} else if err := writeEvaluationTable(w, result.FileEvaluations, cfg); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(w, "\nEvaluated %d files in %v with %d workers. Cache backend: %s\n",
		result.TotalFiles, duration.Round(time.Millisecond), cfg.Concurrency, cacheBackendName(cfg))
	return nil
}

// writeEvaluationDetail writes one untruncated block per file.
func writeEvaluationDetail(w io.Writer, evals []schema.FileEvaluation) {
	_, _ = fmt.Fprintln(w, strings.Repeat("-", reportRuleWidth))
	for _, e := range schema.SortByScore(evals) {
		_, _ = fmt.Fprintf(w, "File: %s\n", e.RelativePath)
		_, _ = fmt.Fprintf(w, "Score: %d/10\n", e.Score)
		_, _ = fmt.Fprintf(w, "Type: %s\n", e.FileType)
		_, _ = fmt.Fprintf(w, "Reason: %s\n", e.Reason)
		_, _ = fmt.Fprintln(w, strings.Repeat("-", detailRuleWidth))
	}
}

// writeEvaluationTable writes the ranked file table.
func writeEvaluationTable(w io.Writer, evals []schema.FileEvaluation, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Path", "Score", "Label", "Type", "Reason"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth, reasonWidth := getColumnWidths(cfg)
	var data [][]string
	for _, e := range schema.EnrichEvaluations(evals) {
		data = append(data, []string{
			strconv.Itoa(e.Rank),
			contract.TruncatePath(e.RelativePath, pathWidth),
			strconv.Itoa(e.Score),
			scoreLabel(e.Score, cfg),
			e.FileType,
			contract.TruncateText(e.Reason, reasonWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("failed to add table rows: %w", err)
	}
	return table.Render()
}

// scoreLabel returns the label for score, colored when colors are enabled.
func scoreLabel(score int, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(score)
	}
	return contract.GetPlainLabel(score)
}

func cacheBackendName(cfg *contract.Config) string {
	if cfg.CacheBackend == "" {
		return string(schema.NoneBackend)
	}
	return string(cfg.CacheBackend)
}
