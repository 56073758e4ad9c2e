// Package geometry maps a validated parameter model to the dimensional
// geometry of the three harmonic drive bodies and to the first-order
// mechanical feasibility metrics (strain, contact ratio, backlash).
//
// Every method is pure closed-form arithmetic over params.Params. Nothing
// here re-validates the model: validation is the params package's job.
//
// Sign convention: the Circular Spline is an internal gear, so its addendum
// circle lies inside the pitch circle and its dedendum circle outside. The
// Flex Spline is external and does the opposite.
package geometry

import (
	"math"

	"github.com/HendryAvila/hdrive/internal/params"
)

// GearKind tells internal (annular) gears from external ones.
type GearKind string

const (
	KindInternal      GearKind = "internal"
	KindExternal      GearKind = "external"
	KindEllipticalCam GearKind = "elliptical_cam"
)

// Design constants of the derived bodies, as multiples of module unless noted.
const (
	HousingWallModules = 10.0
	CupLengthFactor    = 0.8 // of FS pitch diameter
	WaveClearance      = 0.1
	MinShaftDiameter   = 5.0 // mm
	ShaftModules       = 5.0
	WaveHeightFactor   = 0.5 // of FS cup length
	GreaseClearance    = 0.15
)

// MinContactRatio is the contact ratio below which tooth engagement is
// flagged as insufficient.
const MinContactRatio = 1.2

// CircularSplineGeometry is the internal, stationary ring gear.
type CircularSplineGeometry struct {
	Kind             GearKind `json:"type"`
	Teeth            int      `json:"teeth"`
	Module           float64  `json:"module"`
	PitchDiameter    float64  `json:"pitch_diameter"`
	PitchRadius      float64  `json:"pitch_radius"`
	AddendumDiameter float64  `json:"addendum_diameter"`
	DedendumDiameter float64  `json:"dedendum_diameter"`
	BaseDiameter     float64  `json:"base_diameter"`
	OuterDiameter    float64  `json:"outer_diameter"`
	ToothHeight      float64  `json:"tooth_height"`
	PressureAngle    float64  `json:"pressure_angle"`
}

// FlexSplineGeometry is the thin-walled external cup gear.
type FlexSplineGeometry struct {
	Kind             GearKind `json:"type"`
	Teeth            int      `json:"teeth"`
	Module           float64  `json:"module"`
	PitchDiameter    float64  `json:"pitch_diameter"`
	PitchRadius      float64  `json:"pitch_radius"`
	AddendumDiameter float64  `json:"addendum_diameter"`
	DedendumDiameter float64  `json:"dedendum_diameter"`
	BaseDiameter     float64  `json:"base_diameter"`
	InnerDiameter    float64  `json:"inner_diameter"`
	WallThickness    float64  `json:"wall_thickness"`
	CupLength        float64  `json:"cup_length"`
	ToothHeight      float64  `json:"tooth_height"`
	PressureAngle    float64  `json:"pressure_angle"`
}

// WaveGeneratorGeometry is the elliptical input cam.
type WaveGeneratorGeometry struct {
	Kind          GearKind `json:"type"`
	MajorRadius   float64  `json:"major_radius"`
	MinorRadius   float64  `json:"minor_radius"`
	MajorDiameter float64  `json:"major_diameter"`
	MinorDiameter float64  `json:"minor_diameter"`
	Eccentricity  float64  `json:"eccentricity"`
	ShaftDiameter float64  `json:"shaft_diameter"`
	Height        float64  `json:"height"`
	Clearance     float64  `json:"clearance"`
}

// Calculator evaluates geometry for one design. It holds no state beyond
// the design itself, so the zero-cost value can be copied freely.
type Calculator struct {
	p params.Params
}

// NewCalculator returns a Calculator for p.
func NewCalculator(p params.Params) Calculator {
	return Calculator{p: p}
}

// Params returns the design the calculator evaluates.
func (c Calculator) Params() params.Params { return c.p }

// CircularSpline computes the internal gear geometry.
func (c Calculator) CircularSpline() CircularSplineGeometry {
	m := c.p.Module()
	pitch := m * float64(c.p.TeethCS())
	addendum := c.p.Addendum()
	dedendum := c.p.Dedendum()

	// Teeth point inward: addendum inside, dedendum outside the pitch circle.
	addendumDia := pitch - 2*addendum
	dedendumDia := pitch + 2*dedendum

	return CircularSplineGeometry{
		Kind:             KindInternal,
		Teeth:            c.p.TeethCS(),
		Module:           m,
		PitchDiameter:    pitch,
		PitchRadius:      pitch / 2,
		AddendumDiameter: addendumDia,
		DedendumDiameter: dedendumDia,
		BaseDiameter:     pitch * math.Cos(c.p.PressureAngleRad()),
		OuterDiameter:    dedendumDia + 2*HousingWallModules*m,
		ToothHeight:      addendum + dedendum,
		PressureAngle:    c.p.PressureAngle(),
	}
}

// FlexSpline computes the external cup gear geometry.
func (c Calculator) FlexSpline() FlexSplineGeometry {
	m := c.p.Module()
	pitch := m * float64(c.p.TeethFS())
	addendum := c.p.Addendum()
	dedendum := c.p.Dedendum()

	addendumDia := pitch + 2*addendum
	dedendumDia := pitch - 2*dedendum
	wall := c.p.WallThicknessFactor() * m

	return FlexSplineGeometry{
		Kind:             KindExternal,
		Teeth:            c.p.TeethFS(),
		Module:           m,
		PitchDiameter:    pitch,
		PitchRadius:      pitch / 2,
		AddendumDiameter: addendumDia,
		DedendumDiameter: dedendumDia,
		BaseDiameter:     pitch * math.Cos(c.p.PressureAngleRad()),
		InnerDiameter:    dedendumDia - 2*wall,
		WallThickness:    wall,
		CupLength:        CupLengthFactor * pitch,
		ToothHeight:      addendum + dedendum,
		PressureAngle:    c.p.PressureAngle(),
	}
}

// WaveGenerator sizes the cam so its major axis sits one clearance inside
// the Flex Spline bore and its minor axis is two eccentricities shorter.
func (c Calculator) WaveGenerator() WaveGeneratorGeometry {
	fs := c.FlexSpline()
	m := c.p.Module()

	clearance := WaveClearance * m
	major := fs.InnerDiameter/2 - clearance
	minor := major - 2*c.p.Eccentricity()

	return WaveGeneratorGeometry{
		Kind:          KindEllipticalCam,
		MajorRadius:   major,
		MinorRadius:   minor,
		MajorDiameter: 2 * major,
		MinorDiameter: 2 * minor,
		Eccentricity:  c.p.Eccentricity(),
		ShaftDiameter: math.Max(MinShaftDiameter, ShaftModules*m),
		Height:        WaveHeightFactor * fs.CupLength,
		Clearance:     clearance,
	}
}

// Ellipse returns n points of the cam outline, counter-clockwise from the
// positive major axis. n <= 0 yields nil.
func (w WaveGeneratorGeometry) Ellipse(n int) [][2]float64 {
	if n <= 0 {
		return nil
	}
	pts := make([][2]float64, n)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = [2]float64{w.MajorRadius * math.Cos(theta), w.MinorRadius * math.Sin(theta)}
	}
	return pts
}
