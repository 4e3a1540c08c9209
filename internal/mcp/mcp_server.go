// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the leadtime MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Leadtime Standard Time Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: estimate_standard_times ---
	s.AddTool(mcp.NewTool("estimate_standard_times",
		mcp.WithDescription("Estimate the expected arrival window of forecast products per start hour and forecast hour using bootstrap confidence intervals."),
		mcp.WithString("input", mcp.Description("Observation table (csv, json, parquet, xlsx, s3:// URL) or 'store' for the message store. Defaults to the configured input.")),
		mcp.WithString("input_format", mcp.Description("Format of the input when it cannot be inferred."), mcp.Enum("csv", "json", "parquet", "xlsx", "store")),
		mcp.WithString("buckets", mcp.Description("Buckets to estimate, e.g. '00=0,3,6;12=0,6'. Defaults to the configured start hours.")),
		mcp.WithString("start_time", mcp.Description("Cycle selection: YYYYMMDDHH, a range A/B, or a list A,B,C.")),
		mcp.WithString("start_time_freq", mcp.Description("Step of a cycle range, e.g. 'D', '12H' or '6h'.")),
		mcp.WithNumber("bootstrap_count", mcp.Description("Number of bootstrap replicates.")),
		mcp.WithNumber("bootstrap_sample", mcp.Description("Draws per replicate.")),
		mcp.WithNumber("quantile", mcp.Description("Central confidence level between 0 and 1.")),
		mcp.WithNumber("seed", mcp.Description("Seed for reproducible results.")),
		mcp.WithBoolean("skip_empty", mcp.Description("Skip buckets without observations instead of failing.")),
	), h.handleEstimateStandardTimes)

	// --- 2. Tool: check_cycle ---
	s.AddTool(mcp.NewTool("check_cycle",
		mcp.WithDescription("Classify the products of one forecast cycle as early, on time, late, missing or pending against their standard times."),
		mcp.WithString("cycle", mcp.Description("Cycle start time as YYYYMMDDHH."), mcp.Required()),
		mcp.WithString("input", mcp.Description("Observation table or 'store'. Defaults to the configured input.")),
		mcp.WithString("input_format", mcp.Description("Format of the input when it cannot be inferred."), mcp.Enum("csv", "json", "parquet", "xlsx", "store")),
		mcp.WithString("standard_times", mcp.Description("JSON or YAML standard times written by estimate. Estimated from earlier cycles when not set.")),
		mcp.WithString("buckets", mcp.Description("Buckets to check, e.g. '00=0,3,6'.")),
		mcp.WithString("now", mcp.Description("Evaluation time in RFC3339. Defaults to the current time.")),
	), h.handleCheckCycle)

	return s
}

// StartMCPServer starts the leadtime MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
