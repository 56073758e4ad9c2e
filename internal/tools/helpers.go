// Package tools implements the MCP tool handlers over the gear kernel, the
// design catalogue and the exporters.
//
// Each tool is a struct that receives its dependencies via its constructor
// and exposes Definition() for the schema and Handle() for the call.
// User-correctable problems come back as tool errors with a nil Go error;
// only infrastructure failures return a Go error.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/hdrive/internal/config"
	"github.com/HendryAvila/hdrive/internal/params"
)

// floatArg extracts a number argument, returning defaultVal when the key
// is missing or not a number.
func floatArg(req mcp.CallToolRequest, key string, defaultVal float64) float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return v
}

// optFloatArg extracts a number argument that may be omitted, returning
// nil when the key is missing or not a number.
func optFloatArg(req mcp.CallToolRequest, key string) *float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

// intArg extracts an integer argument (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// fractionalArg returns a tool error for the first of keys whose number
// argument is not a whole number, or nil.
func fractionalArg(req mcp.CallToolRequest, keys ...string) *mcp.CallToolResult {
	for _, key := range keys {
		if v, ok := req.GetArguments()[key].(float64); ok && v != math.Trunc(v) {
			return mcp.NewToolResultError(fmt.Sprintf("'%s' must be a whole number", key))
		}
	}
	return nil
}

// boolArg extracts a boolean argument.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

func hasArg(req mcp.CallToolRequest, key string) bool {
	_, ok := req.GetArguments()[key]
	return ok
}

func materialNames() []string {
	ms := params.Materials()
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m)
	}
	return out
}

// designOptions is the shared schema for tools that take a full design.
func designOptions(required bool) []mcp.ToolOption {
	teeth := []mcp.PropertyOption{mcp.Description("Circular Spline tooth count, even, 60..320 (the Flex Spline gets 2 fewer)")}
	module := []mcp.PropertyOption{mcp.Description("Gear module in mm, 0.3..5.0")}
	if required {
		teeth = append(teeth, mcp.Required())
		module = append(module, mcp.Required())
	}
	return []mcp.ToolOption{
		mcp.WithNumber("teeth_cs", teeth...),
		mcp.WithNumber("module", module...),
		mcp.WithNumber("pressure_angle",
			mcp.Description("Pressure angle in degrees, 20..30 (default from config, normally 30)"),
		),
		mcp.WithString("material",
			mcp.Description("Flex Spline material, sets the strain limit"),
			mcp.Enum(materialNames()...),
		),
		mcp.WithNumber("addendum_factor",
			mcp.Description("Addendum as a multiple of module (default 0.8)"),
		),
		mcp.WithNumber("dedendum_factor",
			mcp.Description("Dedendum as a multiple of module (default 1.0)"),
		),
		mcp.WithNumber("wall_thickness_factor",
			mcp.Description("Flex Spline wall thickness as a multiple of module (default 1.5)"),
		),
		mcp.WithNumber("print_tolerance",
			mcp.Description("3D-print tolerance in mm used by print compensation (default 0.2)"),
		),
	}
}

// inputFromRequest reads the design arguments, filling unset optional
// fields from defaults.
func inputFromRequest(req mcp.CallToolRequest, defaults config.DesignConfig) params.Input {
	in := params.Input{
		TeethCS:             intArg(req, "teeth_cs", 0),
		Module:              floatArg(req, "module", 0),
		PressureAngle:       optFloatArg(req, "pressure_angle"),
		Material:            params.Material(strings.ToLower(req.GetString("material", ""))),
		AddendumFactor:      optFloatArg(req, "addendum_factor"),
		DedendumFactor:      optFloatArg(req, "dedendum_factor"),
		WallThicknessFactor: optFloatArg(req, "wall_thickness_factor"),
		PrintTolerance:      optFloatArg(req, "print_tolerance"),
	}
	return defaults.Defaults(in)
}

// paramsFromRequest builds the validated design. A non-nil result is the
// tool error to return to the caller.
func paramsFromRequest(req mcp.CallToolRequest, defaults config.DesignConfig) (params.Params, *mcp.CallToolResult) {
	if !hasArg(req, "teeth_cs") {
		return params.Params{}, mcp.NewToolResultError("'teeth_cs' is required")
	}
	if !hasArg(req, "module") {
		return params.Params{}, mcp.NewToolResultError("'module' is required")
	}
	if res := fractionalArg(req, "teeth_cs"); res != nil {
		return params.Params{}, res
	}
	p, err := params.FromInput(inputFromRequest(req, defaults))
	if err != nil {
		return params.Params{}, invalidDesign(err)
	}
	return p, nil
}

func invalidDesign(err error) *mcp.CallToolResult {
	var verr *params.ValidationError
	if errors.As(err, &verr) {
		return mcp.NewToolResultError("invalid design: " + strings.Join(verr.Messages(), "; "))
	}
	return mcp.NewToolResultError(fmt.Sprintf("invalid design: %v", err))
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func designFields(p params.Params) []zap.Field {
	return []zap.Field{
		zap.Int("teeth_cs", p.TeethCS()),
		zap.Float64("module", p.Module()),
		zap.Float64("pressure_angle", p.PressureAngle()),
		zap.String("material", string(p.Material())),
	}
}
