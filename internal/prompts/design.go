// Package prompts implements MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence of tool calls.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// DesignPrompt handles the hd-design MCP prompt. It walks the AI from a
// ratio and size budget to a validated, saved and exported drive.
type DesignPrompt struct {
	defaultMaterial string
	catalogue       bool
}

// NewDesignPrompt creates a DesignPrompt. catalogue tells the prompt
// whether the save and export-by-id tools are registered.
func NewDesignPrompt(defaultMaterial string, catalogue bool) *DesignPrompt {
	return &DesignPrompt{defaultMaterial: defaultMaterial, catalogue: catalogue}
}

// Definition returns the MCP prompt definition for registration.
func (p *DesignPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("hd-design",
		mcp.WithPromptDescription(
			"Design a harmonic drive from a target reduction ratio and a diameter budget: "+
				"suggest parameters, review geometry and strain, validate the tooth mesh, then save and export.",
		),
		mcp.WithArgument("ratio",
			mcp.ArgumentDescription("Target reduction ratio, e.g. 80 for 80:1"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("max_diameter",
			mcp.ArgumentDescription("Largest pitch diameter that fits, in mm"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("material",
			mcp.ArgumentDescription("Flex Spline material: steel, aluminum, plastic or tpu"),
		),
	)
}

// Handle processes the hd-design prompt request.
func (p *DesignPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	ratio := strings.TrimSpace(args["ratio"])
	maxDia := strings.TrimSpace(args["max_diameter"])
	if ratio == "" || maxDia == "" {
		return nil, fmt.Errorf("hd-design: 'ratio' and 'max_diameter' are required")
	}
	material := strings.TrimSpace(args["material"])
	if material == "" {
		material = p.defaultMaterial
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I need a %s:1 harmonic drive with a pitch diameter of at most %s mm and a %s Flex Spline.\n\n", ratio, maxDia, material)
	b.WriteString("Please:\n")
	fmt.Fprintf(&b, "1. Run `hd_suggest_parameters` with ratio=%s, max_diameter=%s, material=%s. "+
		"If there is no solution, explain which limit failed (strain or size) and propose a softer material or a larger budget.\n", ratio, maxDia, material)
	b.WriteString("2. Run `hd_geometry` on the suggested teeth_cs and module and summarize the three bodies, the strain safety factor and the contact ratio.\n")
	b.WriteString("3. Run `hd_quick_validate` and `hd_validate_mesh` and list every error and warning. " +
		"If the contact ratio is low, try addendum_factor=1.0 and re-run.\n")
	if p.catalogue {
		b.WriteString("4. Once I approve, run `hd_save_design` with a short name, then `hd_export_dxf` with the returned design_id and xlsx=true.\n")
	} else {
		b.WriteString("4. Once I approve, run `hd_export_dxf` with the final parameters and xlsx=true.\n")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Design a %s:1 harmonic drive", ratio),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(b.String()),
			},
		},
	}, nil
}
