package tools

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/hdrive/internal/config"
	"github.com/HendryAvila/hdrive/internal/export"
	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/harmonic"
	"github.com/HendryAvila/hdrive/internal/involute"
	"github.com/HendryAvila/hdrive/internal/params"
	"github.com/HendryAvila/hdrive/internal/store"
)

// ExportTool handles the hd_export_dxf MCP tool. The store is optional;
// without it only inline designs can be exported.
type ExportTool struct {
	cfg   *config.Config
	store *store.Store
	log   *zap.Logger
}

// NewExportTool creates an ExportTool writing under cfg.Export.Dir.
func NewExportTool(cfg *config.Config, s *store.Store, log *zap.Logger) *ExportTool {
	return &ExportTool{cfg: cfg, store: s, log: log}
}

// Definition returns the MCP tool definition for hd_export_dxf.
func (t *ExportTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Export a design as a DXF sketch (every tooth contour, CS housing, FS bore, WG cam and shaft) " +
				"for CAD import, optionally with an XLSX geometry report. Give either design_id or teeth_cs + module.",
		),
		mcp.WithString("design_id",
			mcp.Description("Export a saved design instead of inline parameters"),
		),
		mcp.WithString("file",
			mcp.Description("Output file name inside the export directory (default hdrive_<teeth>_m<module>.dxf)"),
		),
		mcp.WithBoolean("xlsx",
			mcp.Description("Also write an .xlsx geometry report next to the DXF"),
		),
		mcp.WithBoolean("compensated",
			mcp.Description("Draw the teeth with 3D-print compensation applied"),
		),
		mcp.WithNumber("segments",
			mcp.Description("Chords per circle and ellipse (default 180)"),
		),
	}
	return mcp.NewTool("hd_export_dxf", append(opts, designOptions(false)...)...)
}

// Handle processes the hd_export_dxf tool call.
func (t *ExportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := t.resolveParams(req)
	if errResult != nil {
		return errResult, nil
	}

	name := req.GetString("file", "")
	if name == "" {
		name = DefaultExportName(p)
	}
	name = filepath.Base(name)
	if !strings.EqualFold(filepath.Ext(name), ".dxf") {
		name += ".dxf"
	}
	path := filepath.Join(t.cfg.Export.Dir, name)

	opts := []harmonic.Option{harmonic.WithGeneratorOptions(
		involute.WithToothPoints(t.cfg.Profile.ToothPoints),
		involute.WithArcPoints(t.cfg.Profile.ArcPoints),
	)}
	if boolArg(req, "compensated", false) {
		opts = append(opts, harmonic.WithPrintCompensation())
	}

	drawing := export.NewDrawing(p, harmonic.New(p, opts...), intArg(req, "segments", export.DefaultCircleSegments))
	if err := export.WriteDXF(path, drawing); err != nil {
		return nil, fmt.Errorf("exporting dxf: %w", err)
	}
	written := []string{path}

	if boolArg(req, "xlsx", false) {
		xlsxPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".xlsx"
		if err := export.WriteSummaryXLSX(xlsxPath, geometry.NewCalculator(p).Summary()); err != nil {
			return nil, fmt.Errorf("exporting xlsx: %w", err)
		}
		written = append(written, xlsxPath)
	}

	t.log.Info("design exported", append(designFields(p),
		zap.Strings("files", written), zap.Int("segments", drawing.Segments()))...)

	var b strings.Builder
	fmt.Fprintf(&b, "Exported %d line segments (%d polylines)", drawing.Segments(), len(drawing.Polylines))
	for _, w := range written {
		b.WriteString("\n- ")
		b.WriteString(w)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (t *ExportTool) resolveParams(req mcp.CallToolRequest) (params.Params, *mcp.CallToolResult) {
	id := req.GetString("design_id", "")
	if id == "" {
		return paramsFromRequest(req, t.cfg.Design)
	}
	if t.store == nil {
		return params.Params{}, mcp.NewToolResultError("the design catalogue is unavailable; pass teeth_cs and module instead")
	}
	d, err := t.store.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		return params.Params{}, mcp.NewToolResultError(fmt.Sprintf("design %q not found", id))
	}
	if err != nil {
		return params.Params{}, mcp.NewToolResultError(fmt.Sprintf("reading design %q: %v", id, err))
	}
	p, err := d.Params()
	if err != nil {
		return params.Params{}, invalidDesign(err)
	}
	return p, nil
}

// DefaultExportName is the file name used when none is given.
func DefaultExportName(p params.Params) string {
	return fmt.Sprintf("hdrive_%d_m%g.dxf", p.TeethCS(), p.Module())
}
