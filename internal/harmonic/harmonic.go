// Package harmonic binds the Circular Spline and Flex Spline involute
// generators of one design and checks that the pair can mesh as a strain
// wave drive.
package harmonic

import (
	"math"

	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/involute"
	"github.com/HendryAvila/hdrive/internal/params"
)

// Mesh tolerances.
const (
	ModuleTolerance        = 0.001 // mm
	PressureAngleTolerance = 0.001 // degrees
)

// Profile is a CS/FS generator pair.
type Profile struct {
	cs involute.Generator
	fs involute.Generator
}

// Option adjusts how New builds the generators.
type Option func(*buildConfig)

type buildConfig struct {
	compensate bool
	extra      []involute.Option
}

// WithPrintCompensation builds both generators with the additive
// manufacturing compensated addendum, dedendum and tooth thickness.
func WithPrintCompensation() Option {
	return func(c *buildConfig) { c.compensate = true }
}

// WithGeneratorOptions passes extra options to both generators, for
// example point densities.
func WithGeneratorOptions(opts ...involute.Option) Option {
	return func(c *buildConfig) { c.extra = append(c.extra, opts...) }
}

// New builds the CS generator with TeethCS and the FS generator with
// TeethFS, both with the reduced harmonic drive addendum of
// AddendumFactor × module.
func New(p params.Params, opts ...Option) Profile {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	genOpts := []involute.Option{involute.WithAddendum(p.Addendum())}
	if cfg.compensate {
		comp := geometry.NewCalculator(p).Compensation()
		genOpts = []involute.Option{
			involute.WithAddendum(comp.Addendum),
			involute.WithDedendum(comp.Dedendum),
			involute.WithToothThickness(comp.ToothThickness),
		}
	}
	genOpts = append(genOpts, cfg.extra...)

	return Profile{
		cs: involute.New(p.TeethCS(), p.Module(), p.PressureAngle(), genOpts...),
		fs: involute.New(p.TeethFS(), p.Module(), p.PressureAngle(), genOpts...),
	}
}

// NewFromGenerators pairs two arbitrary generators, for checking pairs that
// a validated design could never produce.
func NewFromGenerators(cs, fs involute.Generator) Profile {
	return Profile{cs: cs, fs: fs}
}

// CSGenerator returns the Circular Spline generator.
func (p Profile) CSGenerator() involute.Generator { return p.cs }

// FSGenerator returns the Flex Spline generator.
func (p Profile) FSGenerator() involute.Generator { return p.fs }

// CircularSpline returns the inward-facing CS tooth contours.
func (p Profile) CircularSpline() [][]involute.Point { return p.cs.GearProfile(true) }

// FlexSpline returns the outward-facing FS tooth contours.
func (p Profile) FlexSpline() [][]involute.Point { return p.fs.GearProfile(false) }

// MeshReport aggregates both profile validations and the pairing checks.
type MeshReport struct {
	CSValid      bool                   `json:"cs_valid"`
	FSValid      bool                   `json:"fs_valid"`
	MeshValid    bool                   `json:"mesh_valid"`
	OverallValid bool                   `json:"overall_valid"`
	Errors       []string               `json:"errors"`
	Warnings     []string               `json:"warnings"`
	CS           involute.ProfileReport `json:"cs"`
	FS           involute.ProfileReport `json:"fs"`
}

// ValidateMeshing validates each profile, then requires a tooth difference
// of exactly two, equal modules and equal pressure angles.
func (p Profile) ValidateMeshing() MeshReport {
	cs := p.cs.ValidateProfile()
	fs := p.fs.ValidateProfile()

	r := MeshReport{
		CSValid:   cs.Valid,
		FSValid:   fs.Valid,
		MeshValid: true,
		Errors:    []string{},
		Warnings:  []string{},
		CS:        cs,
		FS:        fs,
	}
	r.Errors = appendPrefixed(r.Errors, "CS: ", cs.Errors)
	r.Errors = appendPrefixed(r.Errors, "FS: ", fs.Errors)
	r.Warnings = appendPrefixed(r.Warnings, "CS: ", cs.Warnings)
	r.Warnings = appendPrefixed(r.Warnings, "FS: ", fs.Warnings)

	if p.cs.Teeth()-p.fs.Teeth() != params.ToothDifference {
		r.Errors = append(r.Errors, "tooth counts must differ by 2")
		r.MeshValid = false
	}
	if math.Abs(p.cs.Module()-p.fs.Module()) > ModuleTolerance {
		r.Errors = append(r.Errors, "modules must be equal")
		r.MeshValid = false
	}
	if math.Abs(p.cs.PressureAngle()-p.fs.PressureAngle()) > PressureAngleTolerance {
		r.Errors = append(r.Errors, "pressure angles must be equal")
		r.MeshValid = false
	}

	r.OverallValid = r.CSValid && r.FSValid && r.MeshValid
	return r
}

func appendPrefixed(dst []string, prefix string, src []string) []string {
	for _, s := range src {
		dst = append(dst, prefix+s)
	}
	return dst
}
