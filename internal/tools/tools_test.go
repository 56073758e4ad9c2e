package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/hdrive/internal/config"
	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/harmonic"
	"github.com/HendryAvila/hdrive/internal/logging"
	"github.com/HendryAvila/hdrive/internal/params"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// call runs a handler and fails on a Go error.
func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	res, err := h(context.Background(), makeReq(args))
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if res == nil {
		t.Fatal("nil result")
	}
	return res
}

// decode unmarshals a successful JSON tool result into v.
func decode(t *testing.T, res *mcp.CallToolResult, v interface{}) {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool returned error: %s", resultText(res))
	}
	if err := json.Unmarshal([]byte(resultText(res)), v); err != nil {
		t.Fatalf("decoding result: %v\n%s", err, resultText(res))
	}
}

func defaults() config.DesignConfig { return config.DefaultConfig().Design }

func profileDefaults() config.ProfileConfig { return config.DefaultConfig().Profile }

// ─── Argument helpers ───────────────────────────────────────────────────────

func TestInputFromRequest_AppliesDefaults(t *testing.T) {
	in := inputFromRequest(makeReq(map[string]interface{}{
		"teeth_cs": float64(160),
		"module":   0.5,
		"material": "PLASTIC",
	}), defaults())

	if in.TeethCS != 160 || in.Module != 0.5 {
		t.Errorf("teeth/module = %d/%v", in.TeethCS, in.Module)
	}
	if in.Material != params.MaterialPlastic {
		t.Errorf("Material = %q, want lower-cased plastic", in.Material)
	}
	if in.PressureAngle == nil || *in.PressureAngle != params.DefaultPressureAngle {
		t.Errorf("PressureAngle = %v, want default", in.PressureAngle)
	}
	if in.AddendumFactor == nil || *in.AddendumFactor != params.DefaultAddendumFactor {
		t.Errorf("AddendumFactor = %v, want default", in.AddendumFactor)
	}
	if in.PrintTolerance == nil || *in.PrintTolerance != params.DefaultPrintTolerance {
		t.Errorf("PrintTolerance = %v, want default", in.PrintTolerance)
	}
}

func TestInputFromRequest_ExplicitZeroTolerance(t *testing.T) {
	in := inputFromRequest(makeReq(map[string]interface{}{
		"teeth_cs":        float64(160),
		"module":          0.5,
		"print_tolerance": float64(0),
	}), defaults())
	if in.PrintTolerance == nil || *in.PrintTolerance != 0 {
		t.Errorf("PrintTolerance = %v, want explicit 0", in.PrintTolerance)
	}
}

func TestParamsFromRequest_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing teeth", map[string]interface{}{"module": 0.5}, "'teeth_cs' is required"},
		{"missing module", map[string]interface{}{"teeth_cs": float64(160)}, "'module' is required"},
		{"odd teeth", map[string]interface{}{"teeth_cs": float64(161), "module": 0.5}, "invalid design"},
		{"bad material", map[string]interface{}{"teeth_cs": float64(160), "module": 0.5, "material": "wood"}, "invalid design"},
		{"fractional teeth", map[string]interface{}{"teeth_cs": 160.5, "module": 0.5}, "'teeth_cs' must be a whole number"},
		{"explicit zero addendum", map[string]interface{}{"teeth_cs": float64(160), "module": 0.5, "addendum_factor": float64(0)}, "addendum_factor must be positive"},
		{"explicit zero pressure angle", map[string]interface{}{"teeth_cs": float64(160), "module": 0.5, "pressure_angle": float64(0)}, "pressure_angle minimum is 20°"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res := paramsFromRequest(makeReq(tt.args), defaults())
			if res == nil || !res.IsError {
				t.Fatalf("expected error result, got %v", res)
			}
			if !strings.Contains(resultText(res), tt.want) {
				t.Errorf("error = %q, want it to contain %q", resultText(res), tt.want)
			}
		})
	}
}

// ─── GeometryTool ───────────────────────────────────────────────────────────

func TestGeometryTool_Definition(t *testing.T) {
	def := NewGeometryTool(defaults(), logging.Nop()).Definition()
	if def.Name != "hd_geometry" {
		t.Errorf("tool name = %q, want hd_geometry", def.Name)
	}
	for _, key := range []string{"teeth_cs", "module", "material", "compensated"} {
		if _, ok := def.InputSchema.Properties[key]; !ok {
			t.Errorf("missing %q parameter", key)
		}
	}
	required := strings.Join(def.InputSchema.Required, ",")
	if !strings.Contains(required, "teeth_cs") || !strings.Contains(required, "module") {
		t.Errorf("required = %v, want teeth_cs and module", def.InputSchema.Required)
	}
}

func TestGeometryTool_Handle(t *testing.T) {
	tool := NewGeometryTool(defaults(), logging.Nop())
	res := call(t, tool.Handle, map[string]interface{}{
		"teeth_cs":    float64(160),
		"module":      0.5,
		"material":    "plastic",
		"compensated": true,
	})

	var got geometryResult
	decode(t, res, &got)
	if got.Ratio != 80 {
		t.Errorf("Ratio = %v, want 80", got.Ratio)
	}
	if got.CircularSpline.Teeth != 160 || got.FlexSpline.Teeth != 158 {
		t.Errorf("teeth = %d/%d, want 160/158", got.CircularSpline.Teeth, got.FlexSpline.Teeth)
	}
	if got.Compensation == nil {
		t.Fatal("compensation missing")
	}
	if got.Compensation.Tolerance != params.DefaultPrintTolerance {
		t.Errorf("Tolerance = %v, want %v", got.Compensation.Tolerance, params.DefaultPrintTolerance)
	}
}

func TestGeometryTool_InvalidDesign(t *testing.T) {
	tool := NewGeometryTool(defaults(), logging.Nop())
	res := call(t, tool.Handle, map[string]interface{}{"teeth_cs": float64(40), "module": 0.5})
	if !res.IsError {
		t.Fatalf("expected tool error, got %s", resultText(res))
	}
}

// ─── QuickValidateTool ──────────────────────────────────────────────────────

func TestQuickValidateTool_Handle(t *testing.T) {
	tool := NewQuickValidateTool(defaults(), logging.Nop())

	tests := []struct {
		name     string
		args     map[string]interface{}
		contains []string
	}{
		{
			"steel strain and contact",
			map[string]interface{}{"teeth_cs": float64(160), "module": 0.5},
			[]string{"FAIL", "steel", "excessive strain", "low contact ratio"},
		},
		{
			"plastic warnings",
			map[string]interface{}{"teeth_cs": float64(80), "module": 0.4, "material": "plastic"},
			[]string{"FAIL", "WARNING: low tooth count", "WARNING: small module"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := resultText(call(t, tool.Handle, tt.args))
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("result missing %q:\n%s", want, text)
				}
			}
		})
	}

	res := call(t, tool.Handle, map[string]interface{}{"teeth_cs": float64(160)})
	if !res.IsError {
		t.Error("missing module should be a tool error")
	}

	res = call(t, tool.Handle, map[string]interface{}{"teeth_cs": 160.7, "module": 0.5})
	if !res.IsError || !strings.Contains(resultText(res), "whole number") {
		t.Errorf("fractional teeth should be a tool error, got %q", resultText(res))
	}
}

// ─── ToothProfileTool ───────────────────────────────────────────────────────

func TestToothProfileTool_Handle(t *testing.T) {
	tool := NewToothProfileTool(defaults(), profileDefaults(), logging.Nop())

	var first toothProfileResult
	decode(t, call(t, tool.Handle, map[string]interface{}{
		"teeth_cs":     float64(100),
		"module":       float64(1),
		"gear":         "cs",
		"flank_points": float64(7),
	}), &first)

	if first.CS == nil || first.FS != nil {
		t.Fatalf("gear=cs returned cs=%v fs=%v", first.CS != nil, first.FS != nil)
	}
	if len(first.CS.Contours) != 1 {
		t.Errorf("contours = %d, want 1", len(first.CS.Contours))
	}
	if got := len(first.CS.Contours[0]); got != first.CS.ContourPoints {
		t.Errorf("contour length = %d, want %d", got, first.CS.ContourPoints)
	}
	if len(first.CS.Flank) != 7 {
		t.Errorf("flank = %d points, want 7", len(first.CS.Flank))
	}

	var all toothProfileResult
	decode(t, call(t, tool.Handle, map[string]interface{}{
		"teeth_cs":     float64(100),
		"module":       float64(1),
		"all_teeth":    true,
		"tooth_points": float64(10),
		"arc_points":   float64(2),
	}), &all)
	if all.CS == nil || all.FS == nil {
		t.Fatal("gear=both should return both gears")
	}
	if len(all.CS.Contours) != 100 || len(all.FS.Contours) != 98 {
		t.Errorf("contours = %d/%d, want 100/98", len(all.CS.Contours), len(all.FS.Contours))
	}
	if all.FS.ContourPoints != 12 {
		t.Errorf("ContourPoints = %d, want 2*5 + 2*1", all.FS.ContourPoints)
	}
	if all.CS.Flank != nil {
		t.Error("flank should be omitted without flank_points")
	}
}

func TestToothProfileTool_BadGear(t *testing.T) {
	tool := NewToothProfileTool(defaults(), profileDefaults(), logging.Nop())
	res := call(t, tool.Handle, map[string]interface{}{"teeth_cs": float64(100), "module": float64(1), "gear": "ws"})
	if !res.IsError {
		t.Errorf("expected tool error, got %s", resultText(res))
	}
}

// ─── ValidateMeshTool ───────────────────────────────────────────────────────

func TestValidateMeshTool_Handle(t *testing.T) {
	tool := NewValidateMeshTool(defaults(), profileDefaults(), logging.Nop())

	var ok harmonic.MeshReport
	decode(t, call(t, tool.Handle, map[string]interface{}{"teeth_cs": float64(160), "module": 0.5}), &ok)
	if !ok.OverallValid {
		t.Errorf("160/158 pair should mesh, errors: %v", ok.Errors)
	}

	var bad harmonic.MeshReport
	decode(t, call(t, tool.Handle, map[string]interface{}{
		"teeth_cs": float64(160),
		"module":   0.5,
		"teeth_fs": float64(157),
	}), &bad)
	if bad.OverallValid || bad.MeshValid {
		t.Error("160/157 pair should not mesh")
	}
	if !strings.Contains(strings.Join(bad.Errors, "\n"), "tooth counts must differ by 2") {
		t.Errorf("errors = %v", bad.Errors)
	}

	res := call(t, tool.Handle, map[string]interface{}{"teeth_cs": float64(160), "module": 0.5, "teeth_fs": 158.4})
	if !res.IsError || !strings.Contains(resultText(res), "'teeth_fs' must be a whole number") {
		t.Errorf("fractional teeth_fs should be a tool error, got %q", resultText(res))
	}
}

// ─── SuggestTool ────────────────────────────────────────────────────────────

func TestSuggestTool_Handle(t *testing.T) {
	tool := NewSuggestTool(defaults(), logging.Nop())

	var s geometry.Summary
	decode(t, call(t, tool.Handle, map[string]interface{}{
		"ratio":        float64(80),
		"max_diameter": float64(100),
		"material":     "plastic",
	}), &s)
	if s.Parameters.TeethCS != 160 || s.Parameters.Module != 0.6 {
		t.Errorf("suggested %d teeth module %v, want 160 / 0.6", s.Parameters.TeethCS, s.Parameters.Module)
	}

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"steel never fits", map[string]interface{}{"ratio": float64(80), "max_diameter": float64(100)}, "no standard module"},
		{"missing ratio", map[string]interface{}{"max_diameter": float64(100)}, "'ratio'"},
		{"missing diameter", map[string]interface{}{"ratio": float64(80)}, "'max_diameter'"},
		{"bad material", map[string]interface{}{"ratio": float64(80), "max_diameter": float64(100), "material": "wood"}, "wood"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, tool.Handle, tt.args)
			if !res.IsError {
				t.Fatalf("expected tool error, got %s", resultText(res))
			}
			if !strings.Contains(resultText(res), tt.want) {
				t.Errorf("error = %q, want it to contain %q", resultText(res), tt.want)
			}
		})
	}
}

// ─── ExportTool ─────────────────────────────────────────────────────────────

func TestExportTool_Handle(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Export.Dir = t.TempDir()
	tool := NewExportTool(cfg, nil, logging.Nop())

	res := call(t, tool.Handle, map[string]interface{}{
		"teeth_cs": float64(100),
		"module":   float64(1),
		"file":     "../escape/elbow",
		"xlsx":     true,
		"segments": float64(24),
	})
	if res.IsError {
		t.Fatalf("export failed: %s", resultText(res))
	}

	for _, name := range []string{"elbow.dxf", "elbow.xlsx"} {
		if _, err := os.Stat(filepath.Join(cfg.Export.Dir, name)); err != nil {
			t.Errorf("%s not written inside the export dir: %v", name, err)
		}
	}
	if !strings.Contains(resultText(res), "line segments") {
		t.Errorf("result = %q", resultText(res))
	}
}

func TestExportTool_DefaultName(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Export.Dir = t.TempDir()
	tool := NewExportTool(cfg, nil, logging.Nop())

	call(t, tool.Handle, map[string]interface{}{"teeth_cs": float64(100), "module": float64(1)})
	if _, err := os.Stat(filepath.Join(cfg.Export.Dir, "hdrive_100_m1.dxf")); err != nil {
		t.Errorf("default file missing: %v", err)
	}
}

func TestExportTool_DesignIDWithoutStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Export.Dir = t.TempDir()
	tool := NewExportTool(cfg, nil, logging.Nop())

	res := call(t, tool.Handle, map[string]interface{}{"design_id": "abc"})
	if !res.IsError || !strings.Contains(resultText(res), "catalogue is unavailable") {
		t.Errorf("result = %q, want catalogue unavailable error", resultText(res))
	}
}
