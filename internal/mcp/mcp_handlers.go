package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/aieval/core"
	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/internal/outwriter"
	"github.com/mark3labs/mcp-go/mcp"
)

var errNoOracle = errors.New("no oracle configured; set --model and the provider credentials")

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	oracle  contract.Oracle
	mgr     contract.CacheManager
}

// scanConfig derives a per-call config from the tool arguments.
func (h *toolHandler) scanConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("folder_path", ""); p != "" {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("cannot access folder %s: %w", p, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a folder", p)
		}
		cfg.ScanRoot = absPath
	}
	if e := request.GetString("exclude_ext", ""); e != "" {
		cfg.ExcludeExtensions = contract.NormalizeExtensions(e)
	}
	if f := request.GetString("exclude_folder", ""); f != "" {
		cfg.ExcludeFolders = contract.SplitList(f)
	}
	if c := request.GetInt("concurrency", 0); c > 0 {
		cfg.Concurrency = min(c, contract.MaxConcurrency)
	}
	return cfg, nil
}

func (h *toolHandler) handleListCodeFiles(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.scanConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	files, err := core.SelectFiles(cfg.ScanRoot, cfg.ExcludeExtensions, cfg.ExcludeFolders)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("file selection failed: %v", err)), nil
	}

	rel := make([]string, 0, len(files))
	for _, f := range files {
		if r, err := filepath.Rel(cfg.ScanRoot, f); err == nil {
			rel = append(rel, filepath.ToSlash(r))
		}
	}
	return jsonResult(map[string]any{"folder": cfg.ScanRoot, "files": rel})
}

func (h *toolHandler) handleEvaluateFolder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.oracle == nil {
		return mcp.NewToolResultError(errNoOracle.Error()), nil
	}
	cfg, err := h.scanConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	result, err := core.GetScanResults(core.WithSuppressHeader(ctx), cfg, h.oracle, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}
	return jsonResult(outwriter.NewEvaluationReport(result))
}

func (h *toolHandler) handleEvaluateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.oracle == nil {
		return mcp.NewToolResultError(errNoOracle.Error()), nil
	}
	path := strings.TrimSpace(request.GetString("file_path", ""))
	if path == "" {
		return mcp.NewToolResultError("file_path is required"), nil
	}
	cfg, err := h.scanConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	eval, err := core.EvaluateSingleFile(ctx, cfg, h.oracle, h.mgr, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}
	return jsonResult(eval)
}

func (h *toolHandler) handlePanelDiscussion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.oracle == nil {
		return mcp.NewToolResultError(errNoOracle.Error()), nil
	}
	prompt := request.GetString("prompt", "")
	result, err := core.RunPanel(ctx, h.oracle, h.baseCfg.Model, h.baseCfg.PanelAgents, prompt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("panel discussion failed: %v", err)), nil
	}
	return jsonResult(result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
