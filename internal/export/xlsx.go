package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/HendryAvila/hdrive/internal/advisor"
	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/params"
)

// Sheet names of the summary workbook, in order.
const (
	SheetParameters     = "Parameters"
	SheetCircularSpline = "CircularSpline"
	SheetFlexSpline     = "FlexSpline"
	SheetWaveGenerator  = "WaveGenerator"
	SheetAnalysis       = "Analysis"
	SheetSweep          = "Sweep"
)

// SweepHeader is the first row of the sweep sheet.
var SweepHeader = []interface{}{
	"teeth_cs", "teeth_fs", "module", "pressure_angle", "material", "ratio",
	"strain_%", "max_strain_%", "strain_safe", "contact_ratio", "mesh_valid", "feasible", "error",
}

type entry struct {
	label string
	value interface{}
	unit  string
}

// WriteSummaryXLSX writes one sheet per body plus the parameters and
// analysis sheets, as label / value / unit rows.
func WriteSummaryXLSX(path string, s geometry.Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	in := s.Parameters
	cs, fs, wg, a := s.CircularSpline, s.FlexSpline, s.WaveGenerator, s.Analysis

	sheets := []struct {
		name    string
		entries []entry
	}{
		{SheetParameters, []entry{
			{"teeth_cs", in.TeethCS, ""},
			{"module", in.Module, "mm"},
			{"pressure_angle", params.Value(in.PressureAngle), "deg"},
			{"material", string(in.Material), ""},
			{"addendum_factor", params.Value(in.AddendumFactor), "m"},
			{"dedendum_factor", params.Value(in.DedendumFactor), "m"},
			{"wall_thickness_factor", params.Value(in.WallThicknessFactor), "m"},
			{"print_tolerance", params.Value(in.PrintTolerance), "mm"},
			{"ratio", s.Ratio, ":1"},
			{"eccentricity", s.Eccentricity, "mm"},
		}},
		{SheetCircularSpline, []entry{
			{"type", string(cs.Kind), ""},
			{"teeth", cs.Teeth, ""},
			{"pitch_diameter", cs.PitchDiameter, "mm"},
			{"addendum_diameter", cs.AddendumDiameter, "mm"},
			{"dedendum_diameter", cs.DedendumDiameter, "mm"},
			{"base_diameter", cs.BaseDiameter, "mm"},
			{"outer_diameter", cs.OuterDiameter, "mm"},
			{"tooth_height", cs.ToothHeight, "mm"},
		}},
		{SheetFlexSpline, []entry{
			{"type", string(fs.Kind), ""},
			{"teeth", fs.Teeth, ""},
			{"pitch_diameter", fs.PitchDiameter, "mm"},
			{"addendum_diameter", fs.AddendumDiameter, "mm"},
			{"dedendum_diameter", fs.DedendumDiameter, "mm"},
			{"base_diameter", fs.BaseDiameter, "mm"},
			{"inner_diameter", fs.InnerDiameter, "mm"},
			{"wall_thickness", fs.WallThickness, "mm"},
			{"cup_length", fs.CupLength, "mm"},
			{"tooth_height", fs.ToothHeight, "mm"},
		}},
		{SheetWaveGenerator, []entry{
			{"type", string(wg.Kind), ""},
			{"major_diameter", wg.MajorDiameter, "mm"},
			{"minor_diameter", wg.MinorDiameter, "mm"},
			{"eccentricity", wg.Eccentricity, "mm"},
			{"shaft_diameter", wg.ShaftDiameter, "mm"},
			{"height", wg.Height, "mm"},
			{"clearance", wg.Clearance, "mm"},
		}},
		{SheetAnalysis, []entry{
			{"strain_%", a.Strain.StrainPercent, "%"},
			{"max_strain_%", a.Strain.MaxStrainPercent, "%"},
			{"strain_safe", a.Strain.IsSafe, ""},
			{"safety_factor", a.Strain.SafetyFactor, ""},
			{"contact_ratio", a.ContactRatio, ""},
			{"backlash_min", a.Backlash.TangentialMin, "mm"},
			{"backlash_max", a.Backlash.TangentialMax, "mm"},
			{"backlash_nominal", a.Backlash.TangentialNominal, "mm"},
			{"backlash_radial", a.Backlash.Radial, "mm"},
			{"is_valid", s.IsValid, ""},
		}},
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return fmt.Errorf("export: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("export: add sheet %s: %w", sh.name, err)
		}

		if err := f.SetSheetRow(sh.name, "A1", &[]interface{}{"field", "value", "unit"}); err != nil {
			return fmt.Errorf("export: write %s: %w", sh.name, err)
		}
		for r, e := range sh.entries {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(sh.name, cell, &[]interface{}{e.label, e.value, e.unit}); err != nil {
				return fmt.Errorf("export: write %s: %w", sh.name, err)
			}
		}
		_ = f.SetColWidth(sh.name, "A", "A", 24)
	}

	return save(f, path)
}

// WriteSweepXLSX writes one row per evaluated candidate, in order, with a
// stream writer so large grids stay cheap.
func WriteSweepXLSX(path string, evals []advisor.Evaluation) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSweep); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetSweep)
	if err != nil {
		return fmt.Errorf("export: stream writer: %w", err)
	}
	if err := sw.SetRow("A1", SweepHeader); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for i, ev := range evals {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, sweepRow(ev)); err != nil {
			return fmt.Errorf("export: write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("export: flush sweep: %w", err)
	}
	return save(f, path)
}

func sweepRow(ev advisor.Evaluation) []interface{} {
	in := ev.Input
	if ev.Err != nil {
		return []interface{}{
			in.TeethCS, "", in.Module, params.Value(in.PressureAngle), string(in.Material), "",
			"", "", false, "", false, false, ev.Err.Error(),
		}
	}
	p, st := ev.Params, ev.Summary.Analysis.Strain
	return []interface{}{
		p.TeethCS(), p.TeethFS(), p.Module(), p.PressureAngle(), string(p.Material()), p.Ratio(),
		st.StrainPercent, st.MaxStrainPercent, st.IsSafe, ev.Summary.Analysis.ContactRatio,
		ev.Mesh.OverallValid, ev.Feasible(), "",
	}
}

func save(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: create output dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save workbook: %w", err)
	}
	return nil
}
