// Package params holds the validated parameter model of one harmonic drive
// design: tooth counts, module, pressure angle, material and manufacturing
// offsets, plus the scalars derived from them.
//
// A Params value is immutable once New returns. All fields are unexported
// and exposed through getters; derived values are computed exactly once,
// during construction. Two Params with equal fields compare equal with ==
// and are interchangeable everywhere downstream.
package params

import (
	"math"
)

// Construction limits.
const (
	MinTeethCS       = 60
	MaxTeethCS       = 320
	MinModule        = 0.3
	MaxModule        = 5.0
	ModuleTolerance  = 0.001
	MinPressureAngle = 20.0
	MaxPressureAngle = 30.0
)

// Defaults for the optional fields.
const (
	DefaultPressureAngle       = 30.0
	DefaultAddendumFactor      = 0.8
	DefaultDedendumFactor      = 1.0
	DefaultWallThicknessFactor = 1.5
	DefaultPrintTolerance      = 0.2
	DefaultMaterial            = MaterialSteel
)

// ToothDifference is the CS/FS tooth-count difference of every design.
const ToothDifference = 2

// Params describes one harmonic drive design.
type Params struct {
	teethCS       int
	module        float64
	pressureAngle float64

	addendumFactor      float64
	dedendumFactor      float64
	material            Material
	wallThicknessFactor float64
	printTolerance      float64

	// derived
	teethFS      int
	ratio        float64
	eccentricity float64
}

// Option customizes an optional field before validation runs.
type Option func(*Params)

// WithAddendumFactor sets the tooth addendum as a multiple of module.
func WithAddendumFactor(f float64) Option {
	return func(p *Params) { p.addendumFactor = f }
}

// WithDedendumFactor sets the tooth dedendum as a multiple of module.
func WithDedendumFactor(f float64) Option {
	return func(p *Params) { p.dedendumFactor = f }
}

// WithMaterial selects the Flex Spline material.
func WithMaterial(m Material) Option {
	return func(p *Params) { p.material = m }
}

// WithWallThicknessFactor sets the Flex Spline cup wall as a multiple of module.
func WithWallThicknessFactor(f float64) Option {
	return func(p *Params) { p.wallThicknessFactor = f }
}

// WithPrintTolerance sets the additive manufacturing compensation in mm.
func WithPrintTolerance(mm float64) Option {
	return func(p *Params) { p.printTolerance = mm }
}

// New validates the inputs and returns the design with its derived fields.
// On failure the error is a *ValidationError listing every violated rule.
func New(teethCS int, module, pressureAngle float64, opts ...Option) (Params, error) {
	p := Params{
		teethCS:             teethCS,
		module:              module,
		pressureAngle:       pressureAngle,
		addendumFactor:      DefaultAddendumFactor,
		dedendumFactor:      DefaultDedendumFactor,
		material:            DefaultMaterial,
		wallThicknessFactor: DefaultWallThicknessFactor,
		printTolerance:      DefaultPrintTolerance,
	}
	for _, opt := range opts {
		opt(&p)
	}

	if err := p.validate(); err != nil {
		return Params{}, err
	}

	p.teethFS = p.teethCS - ToothDifference
	p.ratio = float64(p.teethCS) / 2
	p.eccentricity = 2 * p.module / math.Pi
	return p, nil
}

func (p *Params) validate() error {
	var v ValidationError

	if p.teethCS%2 != 0 {
		v.add("teeth_cs", "teeth_cs must be even")
	}
	if p.teethCS < MinTeethCS {
		v.add("teeth_cs", "teeth_cs minimum is 60")
	}
	if p.teethCS > MaxTeethCS {
		v.add("teeth_cs", "teeth_cs maximum is 320")
	}

	switch {
	case !isFinite(p.module):
		v.add("module", "module must be a finite number")
	default:
		if p.module < MinModule-ModuleTolerance {
			v.add("module", "module minimum is 0.3mm")
		}
		if p.module > MaxModule+ModuleTolerance {
			v.add("module", "module maximum is 5.0mm")
		}
	}

	switch {
	case !isFinite(p.pressureAngle):
		v.add("pressure_angle", "pressure_angle must be a finite number")
	default:
		if p.pressureAngle < MinPressureAngle {
			v.add("pressure_angle", "pressure_angle minimum is 20°")
		}
		if p.pressureAngle > MaxPressureAngle {
			v.add("pressure_angle", "pressure_angle maximum is 30°")
		}
	}

	if err := ValidateMaterial(p.material); err != nil {
		v.add("material", err.Error())
	}
	if !(p.addendumFactor > 0) || !isFinite(p.addendumFactor) {
		v.add("addendum_factor", "addendum_factor must be positive")
	}
	if !(p.dedendumFactor > 0) || !isFinite(p.dedendumFactor) {
		v.add("dedendum_factor", "dedendum_factor must be positive")
	}
	if !(p.wallThicknessFactor > 0) || !isFinite(p.wallThicknessFactor) {
		v.add("wall_thickness_factor", "wall_thickness_factor must be positive")
	}
	if !(p.printTolerance >= 0) || !isFinite(p.printTolerance) {
		v.add("print_tolerance", "print_tolerance must not be negative")
	}

	if len(v.Violations) > 0 {
		return &v
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// --- Getters ---

// TeethCS is the Circular Spline tooth count.
func (p Params) TeethCS() int { return p.teethCS }

// TeethFS is the Flex Spline tooth count, always TeethCS - 2.
func (p Params) TeethFS() int { return p.teethFS }

// Module is the shared tooth size in mm.
func (p Params) Module() float64 { return p.module }

// PressureAngle is the shared nominal pressure angle in degrees.
func (p Params) PressureAngle() float64 { return p.pressureAngle }

// PressureAngleRad is PressureAngle in radians.
func (p Params) PressureAngleRad() float64 { return p.pressureAngle * math.Pi / 180 }

// Ratio is the reduction ratio, TeethCS / 2.
func (p Params) Ratio() float64 { return p.ratio }

// Eccentricity is the Wave Generator radial deflection amplitude, 2·m/π.
func (p Params) Eccentricity() float64 { return p.eccentricity }

func (p Params) AddendumFactor() float64      { return p.addendumFactor }
func (p Params) DedendumFactor() float64      { return p.dedendumFactor }
func (p Params) Material() Material           { return p.material }
func (p Params) WallThicknessFactor() float64 { return p.wallThicknessFactor }
func (p Params) PrintTolerance() float64      { return p.printTolerance }

// Addendum is the tooth height above the pitch circle in mm.
func (p Params) Addendum() float64 { return p.addendumFactor * p.module }

// Dedendum is the tooth depth below the pitch circle in mm.
func (p Params) Dedendum() float64 { return p.dedendumFactor * p.module }

// StrainLimit is the allowable strain for the design's material.
func (p Params) StrainLimit() float64 { return StrainLimit(p.material) }
