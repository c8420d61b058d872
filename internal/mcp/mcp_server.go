// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the evaluator MCP server without starting it.
// The oracle may be nil, in which case only list_code_files succeeds.
func NewMCPServer(baseCfg *contract.Config, o contract.Oracle, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"AI Code Evaluation Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		oracle:  o,
		mgr:     mgr,
	}

	// --- 1. Tool: list_code_files ---
	s.AddTool(mcp.NewTool("list_code_files",
		mcp.WithDescription("List the code files of a folder that would be sent for evaluation."),
		mcp.WithString("folder_path", mcp.Description("Folder to scan (defaults to the configured folder).")),
		mcp.WithString("exclude_ext", mcp.Description("Comma-separated extensions to skip, e.g. '.js,.css'.")),
		mcp.WithString("exclude_folder", mcp.Description("Comma-separated folder names to skip.")),
	), h.handleListCodeFiles)

	// --- 2. Tool: evaluate_folder ---
	s.AddTool(mcp.NewTool("evaluate_folder",
		mcp.WithDescription("Score every code file of a folder for the likelihood of AI generation and aggregate an overall verdict."),
		mcp.WithString("folder_path", mcp.Description("Folder to scan (defaults to the configured folder).")),
		mcp.WithString("exclude_ext", mcp.Description("Comma-separated extensions to skip.")),
		mcp.WithString("exclude_folder", mcp.Description("Comma-separated folder names to skip.")),
		mcp.WithNumber("concurrency", mcp.Description("Maximum number of files evaluated at the same time.")),
	), h.handleEvaluateFolder)

	// --- 3. Tool: evaluate_file ---
	s.AddTool(mcp.NewTool("evaluate_file",
		mcp.WithDescription("Score a single code file for the likelihood of AI generation."),
		mcp.WithString("file_path", mcp.Description("File to score, absolute or relative to folder_path."), mcp.Required()),
		mcp.WithString("folder_path", mcp.Description("Folder the file path is relative to.")),
	), h.handleEvaluateFile)

	// --- 4. Tool: panel_discussion ---
	s.AddTool(mcp.NewTool("panel_discussion",
		mcp.WithDescription("Ask the configured panel of agents the same prompt and return the merged conversation."),
		mcp.WithString("prompt", mcp.Description("Prompt broadcast to every agent."), mcp.Required()),
	), h.handlePanelDiscussion)

	return s
}

// StartMCPServer starts the evaluator MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, o contract.Oracle, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, o, mgr)
	return server.ServeStdio(s)
}
