package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/hdrive/internal/config"
	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/harmonic"
	"github.com/HendryAvila/hdrive/internal/involute"
	"github.com/HendryAvila/hdrive/internal/params"
)

// profileOptions builds the harmonic options shared by the profile and mesh
// tools from the request and the configured point densities.
func profileOptions(req mcp.CallToolRequest, pc config.ProfileConfig) []harmonic.Option {
	opts := []harmonic.Option{harmonic.WithGeneratorOptions(
		involute.WithToothPoints(intArg(req, "tooth_points", pc.ToothPoints)),
		involute.WithArcPoints(intArg(req, "arc_points", pc.ArcPoints)),
	)}
	if boolArg(req, "compensated", false) {
		opts = append(opts, harmonic.WithPrintCompensation())
	}
	return opts
}

func profileToolOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithBoolean("compensated",
			mcp.Description("Build the teeth with 3D-print compensation applied"),
		),
		mcp.WithNumber("tooth_points",
			mcp.Description("Points per tooth across both flanks (default from config, normally 30)"),
		),
		mcp.WithNumber("arc_points",
			mcp.Description("Points per tip and root arc (default from config, normally 5)"),
		),
	}
}

// ToothProfileTool handles the hd_tooth_profile MCP tool.
type ToothProfileTool struct {
	defaults config.DesignConfig
	profile  config.ProfileConfig
	log      *zap.Logger
}

// NewToothProfileTool creates a ToothProfileTool.
func NewToothProfileTool(defaults config.DesignConfig, profile config.ProfileConfig, log *zap.Logger) *ToothProfileTool {
	return &ToothProfileTool{defaults: defaults, profile: profile, log: log}
}

// Definition returns the MCP tool definition for hd_tooth_profile.
func (t *ToothProfileTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Generate involute tooth contours for the Circular Spline (internal) and/or Flex Spline (external), " +
				"with each profile's undercut, interference and contact ratio report. Returns JSON in mm.",
		),
		mcp.WithString("gear",
			mcp.Description("Which gear to return: cs, fs or both (default both)"),
			mcp.Enum("cs", "fs", "both"),
		),
		mcp.WithBoolean("all_teeth",
			mcp.Description("Return every tooth contour instead of the first one. Output grows with teeth × points."),
		),
		mcp.WithNumber("flank_points",
			mcp.Description("Also return a single base-to-addendum involute flank with this many points"),
		),
	}
	opts = append(opts, profileToolOptions()...)
	return mcp.NewTool("hd_tooth_profile", append(opts, designOptions(true)...)...)
}

type gearProfile struct {
	Teeth         int                    `json:"teeth"`
	PitchRadius   float64                `json:"pitch_radius"`
	BaseRadius    float64                `json:"base_radius"`
	OutsideRadius float64                `json:"outside_radius"`
	RootRadius    float64                `json:"root_radius"`
	ContourPoints int                    `json:"contour_points"`
	Report        involute.ProfileReport `json:"report"`
	Contours      [][]involute.Point     `json:"contours"`
	Flank         [][2]float64           `json:"flank,omitempty"`
}

type toothProfileResult struct {
	CS *gearProfile `json:"circular_spline,omitempty"`
	FS *gearProfile `json:"flex_spline,omitempty"`
}

// Handle processes the hd_tooth_profile tool call.
func (t *ToothProfileTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := paramsFromRequest(req, t.defaults)
	if errResult != nil {
		return errResult, nil
	}

	gear := strings.ToLower(req.GetString("gear", "both"))
	if gear != "cs" && gear != "fs" && gear != "both" {
		return mcp.NewToolResultError("'gear' must be one of: cs, fs, both"), nil
	}
	all := boolArg(req, "all_teeth", false)
	flank := intArg(req, "flank_points", 0)

	t.log.Debug("hd_tooth_profile", append(designFields(p),
		zap.String("gear", gear), zap.Bool("all_teeth", all))...)

	prof := harmonic.New(p, profileOptions(req, t.profile)...)
	var res toothProfileResult
	if gear != "fs" {
		res.CS = buildGearProfile(p, prof.CSGenerator(), true, all, flank)
	}
	if gear != "cs" {
		res.FS = buildGearProfile(p, prof.FSGenerator(), false, all, flank)
	}
	return jsonResult(res)
}

func buildGearProfile(p params.Params, g involute.Generator, internal, all bool, flank int) *gearProfile {
	contours := g.GearProfile(internal)
	if !all && len(contours) > 0 {
		contours = contours[:1]
	}
	return &gearProfile{
		Teeth:         g.Teeth(),
		PitchRadius:   g.PitchRadius(),
		BaseRadius:    g.BaseRadius(),
		OutsideRadius: g.OutsideRadius(),
		RootRadius:    g.RootRadius(),
		ContourPoints: g.ContourLen(),
		Report:        g.ValidateProfile(),
		Contours:      contours,
		Flank:         geometry.NewCalculator(p).InvolutePoints(flank, internal),
	}
}

// ─── ValidateMeshTool ───────────────────────────────────────────────────────

// ValidateMeshTool handles the hd_validate_mesh MCP tool.
type ValidateMeshTool struct {
	defaults config.DesignConfig
	profile  config.ProfileConfig
	log      *zap.Logger
}

// NewValidateMeshTool creates a ValidateMeshTool.
func NewValidateMeshTool(defaults config.DesignConfig, profile config.ProfileConfig, log *zap.Logger) *ValidateMeshTool {
	return &ValidateMeshTool{defaults: defaults, profile: profile, log: log}
}

// Definition returns the MCP tool definition for hd_validate_mesh.
func (t *ValidateMeshTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Validate that the Circular Spline and Flex Spline profiles mesh: each profile's undercut and " +
				"interference checks, a tooth difference of exactly 2, equal modules and equal pressure angles. " +
				"Pass teeth_fs to check an arbitrary pair instead of the design's own Flex Spline.",
		),
		mcp.WithNumber("teeth_fs",
			mcp.Description("Override the Flex Spline tooth count (default teeth_cs - 2)"),
		),
	}
	opts = append(opts, profileToolOptions()...)
	return mcp.NewTool("hd_validate_mesh", append(opts, designOptions(true)...)...)
}

// Handle processes the hd_validate_mesh tool call.
func (t *ValidateMeshTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := paramsFromRequest(req, t.defaults)
	if errResult != nil {
		return errResult, nil
	}

	prof := harmonic.New(p, profileOptions(req, t.profile)...)
	if hasArg(req, "teeth_fs") {
		if res := fractionalArg(req, "teeth_fs"); res != nil {
			return res, nil
		}
		fsTeeth := intArg(req, "teeth_fs", p.TeethFS())
		if fsTeeth < 1 {
			return mcp.NewToolResultError("'teeth_fs' must be positive"), nil
		}
		cs := prof.CSGenerator()
		fs := involute.New(fsTeeth, cs.Module(), cs.PressureAngle(),
			involute.WithAddendum(cs.Addendum()),
			involute.WithDedendum(cs.Dedendum()),
			involute.WithToothThickness(cs.ToothThickness()),
		)
		prof = harmonic.NewFromGenerators(cs, fs)
	}

	report := prof.ValidateMeshing()
	t.log.Debug("hd_validate_mesh", append(designFields(p),
		zap.Int("teeth_fs", prof.FSGenerator().Teeth()), zap.Bool("overall_valid", report.OverallValid))...)
	if !report.OverallValid {
		t.log.Info("mesh validation failed", zap.Strings("errors", report.Errors))
	}
	return jsonResult(report)
}
