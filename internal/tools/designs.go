package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/hdrive/internal/config"
	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/store"
)

// SaveDesignTool handles the hd_save_design MCP tool.
type SaveDesignTool struct {
	store    *store.Store
	defaults config.DesignConfig
	log      *zap.Logger
}

// NewSaveDesignTool creates a SaveDesignTool.
func NewSaveDesignTool(s *store.Store, defaults config.DesignConfig, log *zap.Logger) *SaveDesignTool {
	return &SaveDesignTool{store: s, defaults: defaults, log: log}
}

// Definition returns the MCP tool definition for hd_save_design.
func (t *SaveDesignTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Save a design to the persistent catalogue together with a snapshot of its ratio, strain, " +
				"contact ratio and validity. Saved designs can be searched, listed and exported later.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Short, searchable name (e.g. 'robot elbow 80:1')"),
		),
		mcp.WithString("notes",
			mcp.Description("Free-form notes: application, printer, test results"),
		),
	}
	return mcp.NewTool("hd_save_design", append(opts, designOptions(true)...)...)
}

// Handle processes the hd_save_design tool call.
func (t *SaveDesignTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if strings.TrimSpace(name) == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	p, errResult := paramsFromRequest(req, t.defaults)
	if errResult != nil {
		return errResult, nil
	}

	d, err := t.store.Save(name, req.GetString("notes", ""), p)
	if err != nil {
		return nil, fmt.Errorf("saving design: %w", err)
	}
	t.log.Info("design saved", append(designFields(p), zap.String("id", d.ID), zap.Bool("valid", d.IsValid))...)
	return jsonResult(d)
}

// ─── ListDesignsTool ────────────────────────────────────────────────────────

// ListDesignsTool handles the hd_list_designs MCP tool.
type ListDesignsTool struct {
	store *store.Store
}

// NewListDesignsTool creates a ListDesignsTool.
func NewListDesignsTool(s *store.Store) *ListDesignsTool {
	return &ListDesignsTool{store: s}
}

// Definition returns the MCP tool definition for hd_list_designs.
func (t *ListDesignsTool) Definition() mcp.Tool {
	return mcp.NewTool("hd_list_designs",
		mcp.WithDescription("List the most recently saved designs, newest first, with catalogue statistics."),
		mcp.WithNumber("limit",
			mcp.Description("Max designs to return (default: 10)"),
		),
	)
}

// Handle processes the hd_list_designs tool call.
func (t *ListDesignsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	designs, err := t.store.List(intArg(req, "limit", 10))
	if err != nil {
		return nil, fmt.Errorf("listing designs: %w", err)
	}
	stats, err := t.store.Stats()
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	if designs == nil {
		designs = []store.Design{}
	}
	return jsonResult(struct {
		Stats   *store.Stats   `json:"stats"`
		Designs []store.Design `json:"designs"`
	}{stats, designs})
}

// ─── SearchDesignsTool ──────────────────────────────────────────────────────

// SearchDesignsTool handles the hd_search_designs MCP tool.
type SearchDesignsTool struct {
	store *store.Store
}

// NewSearchDesignsTool creates a SearchDesignsTool.
func NewSearchDesignsTool(s *store.Store) *SearchDesignsTool {
	return &SearchDesignsTool{store: s}
}

// Definition returns the MCP tool definition for hd_search_designs.
func (t *SearchDesignsTool) Definition() mcp.Tool {
	return mcp.NewTool("hd_search_designs",
		mcp.WithDescription("Full-text search over saved design names, notes and materials."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search words (e.g. 'elbow plastic')"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 10)"),
		),
	)
}

// Handle processes the hd_search_designs tool call.
func (t *SearchDesignsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	results, err := t.store.Search(query, intArg(req, "limit", 10))
	if err != nil {
		return nil, fmt.Errorf("searching designs: %w", err)
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No designs found for: %q", query)), nil
	}
	return jsonResult(results)
}

// ─── GetDesignTool ──────────────────────────────────────────────────────────

// GetDesignTool handles the hd_get_design MCP tool.
type GetDesignTool struct {
	store *store.Store
}

// NewGetDesignTool creates a GetDesignTool.
func NewGetDesignTool(s *store.Store) *GetDesignTool {
	return &GetDesignTool{store: s}
}

// Definition returns the MCP tool definition for hd_get_design.
func (t *GetDesignTool) Definition() mcp.Tool {
	return mcp.NewTool("hd_get_design",
		mcp.WithDescription("Get a saved design by ID with its geometry recomputed from the stored parameters."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Design ID"),
		),
	)
}

// Handle processes the hd_get_design tool call.
func (t *GetDesignTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	d, err := t.store.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("design %q not found", id)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting design: %w", err)
	}
	p, err := d.Params()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stored design %q no longer validates: %v", id, err)), nil
	}

	return jsonResult(struct {
		Design  *store.Design    `json:"design"`
		Summary geometry.Summary `json:"summary"`
	}{d, geometry.NewCalculator(p).Summary()})
}

// ─── DeleteDesignTool ───────────────────────────────────────────────────────

// DeleteDesignTool handles the hd_delete_design MCP tool.
type DeleteDesignTool struct {
	store *store.Store
	log   *zap.Logger
}

// NewDeleteDesignTool creates a DeleteDesignTool.
func NewDeleteDesignTool(s *store.Store, log *zap.Logger) *DeleteDesignTool {
	return &DeleteDesignTool{store: s, log: log}
}

// Definition returns the MCP tool definition for hd_delete_design.
func (t *DeleteDesignTool) Definition() mcp.Tool {
	return mcp.NewTool("hd_delete_design",
		mcp.WithDescription("Permanently delete a saved design."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Design ID to delete"),
		),
	)
}

// Handle processes the hd_delete_design tool call.
func (t *DeleteDesignTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	err := t.store.Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("design %q not found", id)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("deleting design: %w", err)
	}
	t.log.Info("design deleted", zap.String("id", id))
	return mcp.NewToolResultText(fmt.Sprintf("Design %s deleted", id)), nil
}
