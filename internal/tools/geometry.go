package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/hdrive/internal/config"
	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/params"
)

// GeometryTool handles the hd_geometry MCP tool.
type GeometryTool struct {
	defaults config.DesignConfig
	log      *zap.Logger
}

// NewGeometryTool creates a GeometryTool.
func NewGeometryTool(defaults config.DesignConfig, log *zap.Logger) *GeometryTool {
	return &GeometryTool{defaults: defaults, log: log}
}

// Definition returns the MCP tool definition for hd_geometry.
func (t *GeometryTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Compute the full geometry of a harmonic drive: Circular Spline, Flex Spline and Wave Generator " +
				"dimensions plus strain, contact ratio and backlash analysis. Returns JSON.",
		),
		mcp.WithBoolean("compensated",
			mcp.Description("Also return the 3D-print compensated addendum, dedendum and tooth thickness"),
		),
	}
	return mcp.NewTool("hd_geometry", append(opts, designOptions(true)...)...)
}

type geometryResult struct {
	geometry.Summary
	Compensation *geometry.Compensation `json:"compensation,omitempty"`
}

// Handle processes the hd_geometry tool call.
func (t *GeometryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := paramsFromRequest(req, t.defaults)
	if errResult != nil {
		return errResult, nil
	}
	t.log.Debug("hd_geometry", designFields(p)...)

	calc := geometry.NewCalculator(p)
	res := geometryResult{Summary: calc.Summary()}
	if boolArg(req, "compensated", false) {
		comp := calc.Compensation()
		res.Compensation = &comp
	}
	if !res.IsValid {
		t.log.Info("design fails feasibility checks",
			append(designFields(p),
				zap.Bool("strain_safe", res.Analysis.Strain.IsSafe),
				zap.Float64("contact_ratio", res.Analysis.ContactRatio))...)
	}
	return jsonResult(res)
}

// ─── QuickValidateTool ──────────────────────────────────────────────────────

// QuickValidateTool handles the hd_quick_validate MCP tool.
type QuickValidateTool struct {
	defaults config.DesignConfig
	log      *zap.Logger
}

// NewQuickValidateTool creates a QuickValidateTool.
func NewQuickValidateTool(defaults config.DesignConfig, log *zap.Logger) *QuickValidateTool {
	return &QuickValidateTool{defaults: defaults, log: log}
}

// Definition returns the MCP tool definition for hd_quick_validate.
func (t *QuickValidateTool) Definition() mcp.Tool {
	return mcp.NewTool("hd_quick_validate",
		mcp.WithDescription(
			"Fast go/no-go check of a tooth count and module at 30° pressure angle. "+
				"Reports excessive strain and low contact ratio as errors, small tooth counts and modules as warnings.",
		),
		mcp.WithNumber("teeth_cs",
			mcp.Required(),
			mcp.Description("Circular Spline tooth count"),
		),
		mcp.WithNumber("module",
			mcp.Required(),
			mcp.Description("Gear module in mm"),
		),
		mcp.WithString("material",
			mcp.Description("Flex Spline material (default from config)"),
			mcp.Enum(materialNames()...),
		),
	)
}

// Handle processes the hd_quick_validate tool call.
func (t *QuickValidateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !hasArg(req, "teeth_cs") || !hasArg(req, "module") {
		return mcp.NewToolResultError("'teeth_cs' and 'module' are required"), nil
	}
	if res := fractionalArg(req, "teeth_cs"); res != nil {
		return res, nil
	}
	teeth := intArg(req, "teeth_cs", 0)
	module := floatArg(req, "module", 0)
	material := params.Material(strings.ToLower(req.GetString("material", string(t.defaults.Material))))

	ok, messages := geometry.QuickValidation(teeth, module, material)
	t.log.Debug("hd_quick_validate",
		zap.Int("teeth_cs", teeth), zap.Float64("module", module),
		zap.String("material", string(material)), zap.Bool("ok", ok))

	var b strings.Builder
	if ok {
		fmt.Fprintf(&b, "PASS: %d teeth, module %.2f mm, %s", teeth, module, material)
	} else {
		fmt.Fprintf(&b, "FAIL: %d teeth, module %.2f mm, %s", teeth, module, material)
	}
	for _, m := range messages {
		b.WriteString("\n- ")
		b.WriteString(m)
	}
	return mcp.NewToolResultText(b.String()), nil
}
