// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the concrete store and logger
// and injects them into the tools, prompts and resources. No gear math
// lives here, only wiring.
package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/hdrive/internal/config"
	"github.com/HendryAvila/hdrive/internal/prompts"
	"github.com/HendryAvila/hdrive/internal/resources"
	"github.com/HendryAvila/hdrive/internal/store"
	"github.com/HendryAvila/hdrive/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

type toolHandler interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

func addTools(s *server.MCPServer, handlers ...toolHandler) {
	for _, h := range handlers {
		s.AddTool(h.Definition(), h.Handle)
	}
}

// New creates the MCP server with every tool, prompt and resource
// registered.
//
// The design catalogue is optional: if it cannot be opened the server runs
// without the catalogue tools and logs a warning. The returned cleanup
// closes the catalogue and is always non-nil.
func New(cfg *config.Config, log *zap.Logger) (*server.MCPServer, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, noop, err
	}

	s := server.NewMCPServer(
		"hdrive",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Kernel tools ---

	addTools(s,
		tools.NewGeometryTool(cfg.Design, log),
		tools.NewToothProfileTool(cfg.Design, cfg.Profile, log),
		tools.NewValidateMeshTool(cfg.Design, cfg.Profile, log),
		tools.NewQuickValidateTool(cfg.Design, log),
		tools.NewSuggestTool(cfg.Design, log),
	)

	// --- Design catalogue (optional) ---

	cleanup := noop
	designs, err := store.New(store.Config{DataDir: cfg.Storage.DataDir})
	if err != nil {
		log.Warn("design catalogue disabled", zap.Error(err))
		designs = nil
	} else {
		cleanup = func() {
			if err := designs.Close(); err != nil {
				log.Warn("design catalogue close", zap.Error(err))
			}
		}
		addTools(s,
			tools.NewSaveDesignTool(designs, cfg.Design, log),
			tools.NewListDesignsTool(designs),
			tools.NewSearchDesignsTool(designs),
			tools.NewGetDesignTool(designs),
			tools.NewDeleteDesignTool(designs, log),
		)
	}

	addTools(s, tools.NewExportTool(cfg, designs, log))

	// --- Prompts ---

	design := prompts.NewDesignPrompt(string(cfg.Design.Material), designs != nil)
	s.AddPrompt(design.Definition(), design.Handle)

	// --- Resources ---

	rh := resources.NewHandler(designs)
	s.AddResource(rh.MaterialsResource(), rh.HandleMaterials)
	s.AddResource(rh.ModulesResource(), rh.HandleModules)
	if designs != nil {
		s.AddResource(rh.StatsResource(), rh.HandleStats)
	}

	log.Debug("mcp server ready",
		zap.String("version", Version),
		zap.Bool("catalogue", designs != nil),
		zap.String("export_dir", cfg.Export.Dir))
	return s, cleanup, nil
}

// noop is the cleanup used when the catalogue is not open.
func noop() {}

func serverInstructions() string {
	return `hdrive computes harmonic drive (strain wave gear) geometry and involute tooth profiles.

A design is a Circular Spline tooth count (teeth_cs, even, 60..320; the Flex Spline always has 2 fewer),
a module in mm (0.3..5.0), a pressure angle (20..30°, default 30) and a Flex Spline material
(steel, aluminum, plastic, tpu). The reduction ratio is teeth_cs / 2.

Workflow:
1. hd_suggest_parameters: from a target ratio and pitch diameter budget to teeth_cs + module.
2. hd_geometry: dimensions of all three bodies plus strain, contact ratio and backlash.
3. hd_quick_validate / hd_validate_mesh: go/no-go checks and tooth mesh validation.
4. hd_tooth_profile: involute contours for CAD or inspection.
5. hd_save_design, hd_search_designs, hd_list_designs, hd_get_design, hd_delete_design: the design catalogue.
6. hd_export_dxf: DXF sketch (and optional XLSX report) into the export directory.

Metal Flex Splines exceed their strain limit for every legal tooth count; plastic and TPU are the
practical choices for printed drives. The simplified contact ratio at the default addendum factor (0.8)
is about 1.18, below the 1.2 threshold; addendum_factor=1.0 clears it.`
}
