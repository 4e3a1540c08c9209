package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/leadtime/core"
	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/internal/table"
	"github.com/huangsam/leadtime/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// estimateResponse is what estimate_standard_times returns.
type estimateResponse struct {
	StandardTimes []schema.StandardTimeEntry `json:"standard_times"`
	Skipped       []schema.SkippedBucket     `json:"skipped,omitempty"`
	Seed          uint64                     `json:"seed"`
	Observations  int                        `json:"observations"`
}

// checkItemResponse is one classified forecast hour of check_cycle.
type checkItemResponse struct {
	ForecastHour int    `json:"forecast_hour"`
	Status       string `json:"status"`
	Arrival      string `json:"arrival,omitempty"`
	Clock        string `json:"clock"`
	Lower        string `json:"lower"`
	Upper        string `json:"upper"`
	Deviation    string `json:"deviation"`
}

// checkResponse is what check_cycle returns.
type checkResponse struct {
	Passed    bool                `json:"passed"`
	Cycle     string              `json:"cycle"`
	StartHour string              `json:"start_hour"`
	CheckedAt string              `json:"checked_at"`
	Items     []checkItemResponse `json:"items"`
}

// applySource overrides the observation source settings from the request.
func applySource(cfg *contract.Config, request mcp.CallToolRequest) error {
	if in := request.GetString("input", ""); in != "" {
		cfg.Input = in
	}
	format, err := contract.ResolveInputFormat(cfg.Input, request.GetString("input_format", ""))
	if err != nil {
		return err
	}
	cfg.InputFormat = format
	if b := request.GetString("buckets", ""); b != "" {
		specs, err := contract.ParseBucketsFlag(b)
		if err != nil {
			return err
		}
		if cfg.Buckets, err = contract.ValidateBucketSpecs(specs); err != nil {
			return err
		}
	}
	return nil
}

func (h *toolHandler) handleEstimateStandardTimes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applySource(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid estimate parameters: %v", err)), nil
	}
	if len(cfg.Buckets) == 0 {
		return mcp.NewToolResultError("invalid estimate parameters: no buckets configured. pass buckets or set start_hours"), nil
	}
	if st := request.GetString("start_time", ""); st != "" {
		cycles, err := contract.ParseCycleSelection(st, request.GetString("start_time_freq", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid estimate parameters: %v", err)), nil
		}
		cfg.Cycles = cycles
	}
	if n := request.GetInt("bootstrap_count", 0); n != 0 {
		cfg.Estimator.BootstrapCount = n
	}
	if n := request.GetInt("bootstrap_sample", 0); n != 0 {
		cfg.Estimator.BootstrapSample = n
	}
	if q := request.GetFloat("quantile", 0); q != 0 {
		cfg.Estimator.Quantile = q
	}
	if seed := request.GetInt("seed", -1); seed >= 0 {
		cfg.Estimator.Seed = uint64(seed)
	}
	if request.GetBool("skip_empty", false) {
		cfg.Policy = schema.SkipEmpty
	}
	if err := contract.ValidateEstimatorConfig(cfg.Estimator); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid estimate parameters: %v", err)), nil
	}

	src, err := table.NewSource(cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid source: %v", err)), nil
	}
	output, err := core.Estimate(ctx, cfg, src)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("estimate failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(estimateResponse{
		StandardTimes: schema.ToStandardTimes(output.Results),
		Skipped:       output.Skipped,
		Seed:          output.Config.Seed,
		Observations:  output.Observations,
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCheckCycle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cycle, err := contract.ParseCycleTime(request.GetString("cycle", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid check parameters: %v", err)), nil
	}
	cfg.CheckCycle = cycle
	if err := applySource(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid check parameters: %v", err)), nil
	}
	if st := request.GetString("standard_times", ""); st != "" {
		cfg.StandardTimesFile = st
	}
	if now := request.GetString("now", ""); now != "" {
		t, err := time.Parse(time.RFC3339, now)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid check parameters: now must be RFC3339: %v", err)), nil
		}
		cfg.Now = t
	}

	src, err := table.NewSource(cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid source: %v", err)), nil
	}
	result, err := core.Check(ctx, cfg, src)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(newCheckResponse(result), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func newCheckResponse(result *schema.CheckResult) checkResponse {
	resp := checkResponse{
		Passed:    result.Passed,
		Cycle:     result.Cycle.UTC().Format(schema.CycleLayout),
		StartHour: result.StartHour,
		CheckedAt: table.FormatTimestamp(result.CheckedAt),
		Items:     make([]checkItemResponse, len(result.Items)),
	}
	for i, item := range result.Items {
		var arrival string
		if item.Arrival != nil {
			arrival = table.FormatTimestamp(*item.Arrival)
		}
		resp.Items[i] = checkItemResponse{
			ForecastHour: item.ForecastHour,
			Status:       string(item.Status),
			Arrival:      arrival,
			Clock:        schema.FormatISODuration(item.Clock),
			Lower:        schema.FormatISODuration(item.Lower),
			Upper:        schema.FormatISODuration(item.Upper),
			Deviation:    schema.FormatISODuration(item.Deviation),
		}
	}
	return resp
}
