// Package resources implements read-only MCP resources: the material
// strain table, the standard module series and, when the design catalogue
// is available, its statistics.
//
// URIs use the hdrive:// scheme.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/hdrive/internal/advisor"
	"github.com/HendryAvila/hdrive/internal/params"
	"github.com/HendryAvila/hdrive/internal/store"
)

// Resource URIs.
const (
	MaterialsURI = "hdrive://materials"
	ModulesURI   = "hdrive://modules"
	StatsURI     = "hdrive://designs/stats"
)

// MaterialInfo is one row of the materials resource.
type MaterialInfo struct {
	Material           params.Material `json:"material"`
	StrainLimit        float64         `json:"strain_limit"`
	StrainLimitPercent float64         `json:"strain_limit_percent"`
}

// Handler serves the resource endpoints. The store may be nil.
type Handler struct {
	store *store.Store
}

// NewHandler creates a resource Handler.
func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

// MaterialsResource returns the MCP resource definition for the material table.
func (h *Handler) MaterialsResource() mcp.Resource {
	return mcp.NewResource(
		MaterialsURI,
		"Flex Spline Materials",
		mcp.WithResourceDescription("Supported Flex Spline materials and their allowable strain"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleMaterials returns the material table as JSON.
func (h *Handler) HandleMaterials(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var rows []MaterialInfo
	for _, m := range params.Materials() {
		limit := params.StrainLimit(m)
		rows = append(rows, MaterialInfo{Material: m, StrainLimit: limit, StrainLimitPercent: limit * 100})
	}
	return jsonResource(req.Params.URI, rows)
}

// ModulesResource returns the MCP resource definition for the module series.
func (h *Handler) ModulesResource() mcp.Resource {
	return mcp.NewResource(
		ModulesURI,
		"Standard Modules",
		mcp.WithResourceDescription("Standard gear modules in mm, largest first, as tried by the parameter advisor"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleModules returns the standard module list as JSON.
func (h *Handler) HandleModules(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, advisor.Modules())
}

// StatsResource returns the MCP resource definition for catalogue statistics.
func (h *Handler) StatsResource() mcp.Resource {
	return mcp.NewResource(
		StatsURI,
		"Design Catalogue Statistics",
		mcp.WithResourceDescription("Total and valid saved designs, with per-material counts"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStats returns catalogue statistics as JSON.
func (h *Handler) HandleStats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.store == nil {
		return errorResource(req.Params.URI, "design catalogue unavailable"), nil
	}
	stats, err := h.store.Stats()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, stats)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
