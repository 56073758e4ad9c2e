package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/hdrive/internal/config"
	"github.com/HendryAvila/hdrive/internal/params"
)

// designFlags are the per-command design inputs. Values given on the command
// line override those read from --design; unset fields fall back to the
// config defaults.
type designFlags struct {
	file            string
	teeth           int
	module          float64
	pressureAngle   float64
	material        string
	addendumFactor  float64
	dedendumFactor  float64
	wallFactor      float64
	printTolerance  float64

	// name and notes come from the design file when one is read.
	name  string
	notes string
}

func (d *designFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&d.file, "design", "", "JSON5 design file")
	f.IntVar(&d.teeth, "teeth", 0, "Circular Spline tooth count (even, 60..320)")
	f.Float64Var(&d.module, "module", 0, "Module in mm (0.3..5.0)")
	f.Float64Var(&d.pressureAngle, "pressure-angle", 0, "Pressure angle in degrees (default from config)")
	f.StringVar(&d.material, "material", "", "Flex Spline material: steel, aluminum, plastic, tpu")
	f.Float64Var(&d.addendumFactor, "addendum", 0, "Addendum factor (× module)")
	f.Float64Var(&d.dedendumFactor, "dedendum", 0, "Dedendum factor (× module)")
	f.Float64Var(&d.wallFactor, "wall", 0, "Flex Spline wall thickness factor (× module)")
	f.Float64Var(&d.printTolerance, "tolerance", 0, "3D-print tolerance in mm")
}

// resolve builds the validated design from --design, the flags and defaults.
func (d *designFlags) resolve(cmd *cobra.Command, defaults config.DesignConfig) (params.Params, error) {
	var in params.Input
	if d.file != "" {
		df, err := config.ReadDesign(d.file)
		if err != nil {
			return params.Params{}, err
		}
		in = df.Input
		d.name, d.notes = df.Name, df.Notes
	}

	f := cmd.Flags()
	if f.Changed("teeth") {
		in.TeethCS = d.teeth
	}
	if f.Changed("module") {
		in.Module = d.module
	}
	if f.Changed("pressure-angle") {
		in.PressureAngle = params.Float64(d.pressureAngle)
	}
	if f.Changed("material") {
		in.Material = params.Material(strings.ToLower(d.material))
	}
	if f.Changed("addendum") {
		in.AddendumFactor = params.Float64(d.addendumFactor)
	}
	if f.Changed("dedendum") {
		in.DedendumFactor = params.Float64(d.dedendumFactor)
	}
	if f.Changed("wall") {
		in.WallThicknessFactor = params.Float64(d.wallFactor)
	}
	if f.Changed("tolerance") {
		in.PrintTolerance = params.Float64(d.printTolerance)
	}

	if in.TeethCS == 0 || in.Module == 0 {
		return params.Params{}, fmt.Errorf("a design needs --teeth and --module, or --design")
	}
	return params.FromInput(defaults.Defaults(in))
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
