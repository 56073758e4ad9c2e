package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/hdrive/internal/advisor"
	"github.com/HendryAvila/hdrive/internal/config"
	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/params"
)

// SuggestTool handles the hd_suggest_parameters MCP tool.
type SuggestTool struct {
	defaults config.DesignConfig
	log      *zap.Logger
}

// NewSuggestTool creates a SuggestTool.
func NewSuggestTool(defaults config.DesignConfig, log *zap.Logger) *SuggestTool {
	return &SuggestTool{defaults: defaults, log: log}
}

// Definition returns the MCP tool definition for hd_suggest_parameters.
func (t *SuggestTool) Definition() mcp.Tool {
	return mcp.NewTool("hd_suggest_parameters",
		mcp.WithDescription(
			"Suggest a tooth count and the largest standard module for a target reduction ratio whose pitch diameter fits a "+
				"budget and stays within the material's strain limit. Returns the design's full geometry.",
		),
		mcp.WithNumber("ratio",
			mcp.Required(),
			mcp.Description("Target reduction ratio, e.g. 80 for 80:1"),
		),
		mcp.WithNumber("max_diameter",
			mcp.Required(),
			mcp.Description("Maximum Circular Spline pitch diameter in mm"),
		),
		mcp.WithString("material",
			mcp.Description("Flex Spline material (default from config)"),
			mcp.Enum(materialNames()...),
		),
	)
}

// Handle processes the hd_suggest_parameters tool call.
func (t *SuggestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ratio := floatArg(req, "ratio", 0)
	maxDia := floatArg(req, "max_diameter", 0)
	if !(ratio > 0) {
		return mcp.NewToolResultError("'ratio' must be a positive number"), nil
	}
	if !(maxDia > 0) {
		return mcp.NewToolResultError("'max_diameter' must be a positive number"), nil
	}
	material := params.Material(strings.ToLower(req.GetString("material", string(t.defaults.Material))))

	p, err := advisor.Suggest(ratio, maxDia, material)
	if errors.Is(err, advisor.ErrNoSolution) {
		t.log.Info("no parameter suggestion",
			zap.Float64("ratio", ratio), zap.Float64("max_diameter", maxDia), zap.String("material", string(material)))
		return mcp.NewToolResultError(fmt.Sprintf(
			"no standard module satisfies ratio %.0f:1 within %.1f mm for %s: %v", ratio, maxDia, material, err)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	t.log.Debug("hd_suggest_parameters", designFields(p)...)
	return jsonResult(geometry.NewCalculator(p).Summary())
}
