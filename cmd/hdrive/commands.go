package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/hdrive/internal/advisor"
	"github.com/HendryAvila/hdrive/internal/export"
	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/harmonic"
	"github.com/HendryAvila/hdrive/internal/involute"
	"github.com/HendryAvila/hdrive/internal/params"
	hdserver "github.com/HendryAvila/hdrive/internal/server"
	"github.com/HendryAvila/hdrive/internal/tools"
	"github.com/HendryAvila/hdrive/internal/updater"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := hdserver.New(a.cfg, a.log)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			a.log.Info("serving MCP over stdio", zap.String("version", hdserver.Version))
			return server.ServeStdio(s)
		},
	}
}

func (a *app) geometryCmd() *cobra.Command {
	var (
		df          designFlags
		compensated bool
	)
	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Print the full geometry and analysis of a design as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := df.resolve(cmd, a.cfg.Design)
			if err != nil {
				return err
			}
			calc := geometry.NewCalculator(p)
			if !compensated {
				return writeJSON(cmd, calc.Summary())
			}
			comp := calc.Compensation()
			return writeJSON(cmd, struct {
				geometry.Summary
				Compensation geometry.Compensation `json:"compensation"`
			}{calc.Summary(), comp})
		},
	}
	df.register(cmd)
	cmd.Flags().BoolVar(&compensated, "compensated", false, "Include the 3D-print compensated tooth form")
	return cmd
}

// profileOptions mirrors the MCP tool: configured densities, overridable by
// flags, plus optional print compensation.
func (a *app) profileOptions(cmd *cobra.Command, toothPoints, arcPoints int, compensated bool) []harmonic.Option {
	if !cmd.Flags().Changed("tooth-points") {
		toothPoints = a.cfg.Profile.ToothPoints
	}
	if !cmd.Flags().Changed("arc-points") {
		arcPoints = a.cfg.Profile.ArcPoints
	}
	opts := []harmonic.Option{harmonic.WithGeneratorOptions(
		involute.WithToothPoints(toothPoints),
		involute.WithArcPoints(arcPoints),
	)}
	if compensated {
		opts = append(opts, harmonic.WithPrintCompensation())
	}
	return opts
}

func (a *app) profileCmd() *cobra.Command {
	var (
		df                     designFlags
		gear                   string
		all, compensated       bool
		outline                bool
		toothPoints, arcPoints int
	)
	type gearContours struct {
		Teeth    int                    `json:"teeth"`
		Report   involute.ProfileReport `json:"report"`
		Contours [][]involute.Point     `json:"contours"`
		Outline  *geometry.ToothProfile `json:"outline,omitempty"`
	}
	build := func(p params.Params, g involute.Generator, internal bool) *gearContours {
		contours := g.GearProfile(internal)
		if !all && len(contours) > 0 {
			contours = contours[:1]
		}
		gc := &gearContours{Teeth: g.Teeth(), Report: g.ValidateProfile(), Contours: contours}
		if outline {
			tp := geometry.NewCalculator(p).ToothProfile(internal)
			gc.Outline = &tp
		}
		return gc
	}

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print involute tooth contours as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gear = strings.ToLower(gear)
			if gear != "cs" && gear != "fs" && gear != "both" {
				return fmt.Errorf("--gear must be one of: cs, fs, both")
			}
			p, err := df.resolve(cmd, a.cfg.Design)
			if err != nil {
				return err
			}
			prof := harmonic.New(p, a.profileOptions(cmd, toothPoints, arcPoints, compensated)...)

			var out struct {
				CS *gearContours `json:"circular_spline,omitempty"`
				FS *gearContours `json:"flex_spline,omitempty"`
			}
			if gear != "fs" {
				out.CS = build(p, prof.CSGenerator(), true)
			}
			if gear != "cs" {
				out.FS = build(p, prof.FSGenerator(), false)
			}
			return writeJSON(cmd, out)
		},
	}
	df.register(cmd)
	f := cmd.Flags()
	f.StringVar(&gear, "gear", "both", "Gear to print: cs, fs or both")
	f.BoolVar(&all, "all-teeth", false, "Print every tooth instead of the first")
	f.BoolVar(&compensated, "compensated", false, "Apply 3D-print compensation")
	f.BoolVar(&outline, "outline", false, "Also print the flank-and-mirror outline of one tooth")
	f.IntVar(&toothPoints, "tooth-points", 0, "Points per tooth (default from config)")
	f.IntVar(&arcPoints, "arc-points", 0, "Points per tip and root arc (default from config)")
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	var (
		df     designFlags
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the quick feasibility check and the tooth mesh validation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := df.resolve(cmd, a.cfg.Design)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			ok, messages := geometry.QuickValidation(p.TeethCS(), p.Module(), p.Material())
			fmt.Fprintf(w, "quick validation: %s\n", passFail(ok))
			for _, m := range messages {
				fmt.Fprintf(w, "  - %s\n", m)
			}

			mesh := harmonic.New(p).ValidateMeshing()
			fmt.Fprintf(w, "mesh: %s (cs contact ratio %.3f, fs contact ratio %.3f)\n",
				passFail(mesh.OverallValid), mesh.CS.ContactRatio, mesh.FS.ContactRatio)
			for _, e := range mesh.Errors {
				fmt.Fprintf(w, "  - %s\n", e)
			}
			for _, warn := range mesh.Warnings {
				fmt.Fprintf(w, "  - WARNING: %s\n", warn)
			}

			if strict && (!ok || !mesh.OverallValid) {
				return errors.New("design failed validation")
			}
			return nil
		},
	}
	df.register(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any check fails")
	return cmd
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func (a *app) suggestCmd() *cobra.Command {
	var (
		ratio, maxDiameter float64
		material, save     string
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest a tooth count and module for a ratio and pitch diameter budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !(ratio > 0) || !(maxDiameter > 0) {
				return errors.New("--ratio and --max-diameter must be positive")
			}
			m := a.cfg.Design.Material
			if material != "" {
				m = params.Material(strings.ToLower(material))
			}

			p, err := advisor.Suggest(ratio, maxDiameter, m)
			if err != nil {
				return fmt.Errorf("suggesting %.0f:1 within %.1f mm for %s: %w", ratio, maxDiameter, m, err)
			}
			a.log.Debug("suggestion", zap.Int("teeth_cs", p.TeethCS()), zap.Float64("module", p.Module()))

			if save != "" {
				s, err := a.openStore()
				if err != nil {
					return err
				}
				defer s.Close()
				d, err := s.Save(save, fmt.Sprintf("suggested for %.0f:1 within %.1f mm", ratio, maxDiameter), p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved design %s\n", d.ID)
			}
			return writeJSON(cmd, geometry.NewCalculator(p).Summary())
		},
	}
	f := cmd.Flags()
	f.Float64Var(&ratio, "ratio", 0, "Target reduction ratio, e.g. 80")
	f.Float64Var(&maxDiameter, "max-diameter", 0, "Maximum Circular Spline pitch diameter in mm")
	f.StringVar(&material, "material", "", "Flex Spline material (default from config)")
	f.StringVar(&save, "save", "", "Save the suggestion to the catalogue under this name")
	return cmd
}

func (a *app) sweepCmd() *cobra.Command {
	var (
		teethMin, teethMax, workers int
		modules                     []float64
		pressureAngle               float64
		material, xlsx              string
		feasibleOnly                bool
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate a grid of tooth counts and modules concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if teethMin > teethMax {
				return fmt.Errorf("--teeth-min (%d) exceeds --teeth-max (%d)", teethMin, teethMax)
			}
			if len(modules) == 0 {
				modules = advisor.Modules()
			}
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Sweep.Workers
			}

			var pa *float64
			if cmd.Flags().Changed("pressure-angle") {
				pa = params.Float64(pressureAngle)
			}
			inputs := advisor.SweepRange(teethMin, teethMax, modules, pa, params.Material(strings.ToLower(material)))
			for i := range inputs {
				inputs[i] = a.cfg.Design.Defaults(inputs[i])
			}

			evals, err := advisor.Sweep(cmd.Context(), inputs, workers)
			if err != nil {
				return err
			}
			feasible := advisor.Feasible(evals)
			a.log.Info("sweep done",
				zap.Int("candidates", len(evals)), zap.Int("feasible", len(feasible)), zap.Int("workers", workers))

			if xlsx != "" {
				if err := export.WriteSweepXLSX(xlsx, evals); err != nil {
					return err
				}
			}
			if feasibleOnly {
				evals = feasible
			}
			return writeSweepTable(cmd, evals)
		},
	}
	f := cmd.Flags()
	f.IntVar(&teethMin, "teeth-min", params.MinTeethCS, "Smallest Circular Spline tooth count")
	f.IntVar(&teethMax, "teeth-max", params.MaxTeethCS, "Largest Circular Spline tooth count")
	f.Float64SliceVar(&modules, "modules", nil, "Modules to try (default: every standard module)")
	f.Float64Var(&pressureAngle, "pressure-angle", 0, "Pressure angle in degrees (default from config)")
	f.StringVar(&material, "material", "", "Flex Spline material (default from config)")
	f.IntVar(&workers, "workers", advisor.DefaultWorkers, "Concurrent evaluations (default from config)")
	f.BoolVar(&feasibleOnly, "feasible-only", false, "Only print feasible candidates")
	f.StringVar(&xlsx, "xlsx", "", "Also write every evaluation to this .xlsx file")
	return cmd
}

func writeSweepTable(cmd *cobra.Command, evals []advisor.Evaluation) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEETH\tMODULE\tRATIO\tSTRAIN %\tCONTACT\tMESH\tFEASIBLE")
	for _, ev := range evals {
		if ev.Err != nil {
			fmt.Fprintf(tw, "%d\t%g\t-\t-\t-\t-\tinvalid: %v\n", ev.Input.TeethCS, ev.Input.Module, ev.Err)
			continue
		}
		fmt.Fprintf(tw, "%d\t%g\t%.0f\t%.3f\t%.3f\t%t\t%t\n",
			ev.Params.TeethCS(), ev.Params.Module(), ev.Summary.Ratio,
			ev.Summary.Analysis.Strain.StrainPercent, ev.Summary.Analysis.ContactRatio,
			ev.Mesh.OverallValid, ev.Feasible())
	}
	return tw.Flush()
}

func (a *app) exportCmd() *cobra.Command {
	var (
		df                designFlags
		id, out           string
		xlsx, compensated bool
		segments          int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a DXF sketch of a design, optionally with an XLSX report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p params.Params
			if id != "" {
				s, err := a.openStore()
				if err != nil {
					return err
				}
				defer s.Close()
				d, err := s.Get(id)
				if err != nil {
					return err
				}
				if p, err = d.Params(); err != nil {
					return err
				}
			} else {
				var err error
				if p, err = df.resolve(cmd, a.cfg.Design); err != nil {
					return err
				}
			}

			if out == "" {
				out = filepath.Join(a.cfg.Export.Dir, tools.DefaultExportName(p))
			}
			prof := harmonic.New(p, a.profileOptions(cmd, a.cfg.Profile.ToothPoints, a.cfg.Profile.ArcPoints, compensated)...)
			drawing := export.NewDrawing(p, prof, segments)
			if err := export.WriteDXF(out, drawing); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %d line segments in %d polylines\n", out, drawing.Segments(), len(drawing.Polylines))

			if xlsx {
				report := strings.TrimSuffix(out, filepath.Ext(out)) + ".xlsx"
				if err := export.WriteSummaryXLSX(report, geometry.NewCalculator(p).Summary()); err != nil {
					return err
				}
				fmt.Fprintln(w, report)
			}
			a.log.Info("design exported", zap.String("dxf", out), zap.Bool("xlsx", xlsx))
			return nil
		},
	}
	df.register(cmd)
	f := cmd.Flags()
	f.StringVar(&id, "id", "", "Export a saved design by ID")
	f.StringVar(&out, "out", "", "DXF path (default <export dir>/hdrive_<teeth>_m<module>.dxf)")
	f.BoolVar(&xlsx, "xlsx", false, "Also write an .xlsx geometry report next to the DXF")
	f.BoolVar(&compensated, "compensated", false, "Draw the teeth with 3D-print compensation")
	f.IntVar(&segments, "segments", export.DefaultCircleSegments, "Chords per circle and ellipse")
	return cmd
}

// newChecker builds the release checker; tests point it at a local server.
var newChecker = updater.NewChecker

func (a *app) versionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "hdrive v%s\n", hdserver.Version)
			if !check {
				return nil
			}

			res, err := newChecker().Check(cmd.Context(), hdserver.Version)
			if err != nil {
				a.log.Warn("update check failed", zap.Error(err))
				return err
			}
			if res.UpdateAvailable {
				fmt.Fprintf(w, "update available: v%s (%s)\n", res.LatestVersion, res.ReleaseURL)
			} else {
				fmt.Fprintln(w, "up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub Releases for a newer version")
	return cmd
}
