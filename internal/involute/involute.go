// Package involute generates exact involute tooth contours for spur gears,
// including internal (annular) gears derived by inverting the external
// contour about the pitch circle.
//
// A Generator is immutable after New. Every overridable tooth dimension is
// threaded through construction as an Option.
//
// GearProfile is O(teeth × points-per-tooth) in time and memory. The
// generator imposes no upper bound on either; callers that accept untrusted
// sizes should bound them.
package involute

import (
	"math"
)

// Standard tooth proportions as multiples of module.
const (
	StandardAddendum    = 1.0
	StandardDedendum    = 1.25
	FilletRadiusModules = 0.38
)

// Point densities used when no option overrides them.
const (
	DefaultToothPoints = 30
	DefaultArcPoints   = 5
)

// Point is a 2D contour point in millimeters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Radius is the distance from the gear center.
func (p Point) Radius() float64 { return math.Hypot(p.X, p.Y) }

// Angle is the polar angle in radians.
func (p Point) Angle() float64 { return math.Atan2(p.Y, p.X) }

func (p Point) rotate(theta float64) Point {
	sin, cos := math.Sincos(theta)
	return Point{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}

func polar(r, theta float64) Point {
	sin, cos := math.Sincos(theta)
	return Point{X: r * cos, Y: r * sin}
}

// Generator produces involute geometry for one gear.
type Generator struct {
	teeth         int
	module        float64
	pressureAngle float64 // degrees

	addendum       float64
	dedendum       float64
	toothThickness float64
	toothPoints    int
	arcPoints      int

	pitchRadius   float64
	baseRadius    float64
	outsideRadius float64
	rootRadius    float64
}

// Option overrides a default tooth dimension or point density.
type Option func(*Generator)

// WithAddendum sets the tooth height above the pitch circle in mm. The
// outside radius follows.
func WithAddendum(mm float64) Option {
	return func(g *Generator) { g.addendum = mm }
}

// WithDedendum sets the tooth depth below the pitch circle in mm.
func WithDedendum(mm float64) Option {
	return func(g *Generator) { g.dedendum = mm }
}

// WithToothThickness sets the tooth thickness along the pitch circle in mm.
func WithToothThickness(mm float64) Option {
	return func(g *Generator) { g.toothThickness = mm }
}

// WithToothPoints sets the total flank point budget per tooth; each flank
// gets half. Values below 2 are ignored.
func WithToothPoints(n int) Option {
	return func(g *Generator) {
		if n >= 2 {
			g.toothPoints = n
		}
	}
}

// WithArcPoints sets the subdivision count of the tip and root arcs; each
// arc contributes n-1 interior points. Values below 1 are ignored.
func WithArcPoints(n int) Option {
	return func(g *Generator) {
		if n >= 1 {
			g.arcPoints = n
		}
	}
}

// New returns a generator for a gear with the given tooth count, module in
// mm and pressure angle in degrees. No range checks are made; the inputs
// are expected to come from a validated design.
func New(teeth int, module, pressureAngle float64, opts ...Option) Generator {
	g := Generator{
		teeth:          teeth,
		module:         module,
		pressureAngle:  pressureAngle,
		addendum:       StandardAddendum * module,
		dedendum:       StandardDedendum * module,
		toothThickness: math.Pi * module / 2,
		toothPoints:    DefaultToothPoints,
		arcPoints:      DefaultArcPoints,
	}
	for _, opt := range opts {
		opt(&g)
	}

	g.pitchRadius = module * float64(teeth) / 2
	g.baseRadius = g.pitchRadius * math.Cos(g.PressureAngleRad())
	g.outsideRadius = g.pitchRadius + g.addendum
	g.rootRadius = g.pitchRadius - g.dedendum
	return g
}

func (g Generator) Teeth() int                { return g.teeth }
func (g Generator) Module() float64           { return g.module }
func (g Generator) PressureAngle() float64    { return g.pressureAngle }
func (g Generator) PressureAngleRad() float64 { return g.pressureAngle * math.Pi / 180 }
func (g Generator) Addendum() float64         { return g.addendum }
func (g Generator) Dedendum() float64         { return g.dedendum }
func (g Generator) ToothThickness() float64   { return g.toothThickness }
func (g Generator) PitchRadius() float64      { return g.pitchRadius }
func (g Generator) BaseRadius() float64       { return g.baseRadius }
func (g Generator) OutsideRadius() float64    { return g.outsideRadius }
func (g Generator) RootRadius() float64       { return g.rootRadius }
func (g Generator) FilletRadius() float64     { return FilletRadiusModules * g.module }

// ToothPoints is the flank point budget per tooth.
func (g Generator) ToothPoints() int { return g.toothPoints }

// ArcPoints is the tip/root arc subdivision count.
func (g Generator) ArcPoints() int { return g.arcPoints }

// ContourLen is the number of points SingleToothProfile returns whenever
// the flank is non-empty.
func (g Generator) ContourLen() int {
	return 2*(g.toothPoints/2) + 2*(g.arcPoints-1)
}

// InvoluteFunction returns inv(α) = tan α − α for α in radians.
func InvoluteFunction(alpha float64) float64 {
	return math.Tan(alpha) - alpha
}

// InvolutePoint evaluates the involute of the base circle at roll angle t.
// InvolutePoint(0) is (base radius, 0).
func (g Generator) InvolutePoint(t float64) Point {
	sin, cos := math.Sincos(t)
	return Point{
		X: g.baseRadius * (cos + t*sin),
		Y: g.baseRadius * (sin - t*cos),
	}
}

// InvolutePoints returns n points evenly spaced in roll angle between the
// start and end radii. The start is raised to the base circle when it lies
// below it. An end radius inside the base circle has no involute and yields
// an empty slice, as does n <= 0. n == 1 yields the start point.
func (g Generator) InvolutePoints(startRadius, endRadius float64, n int) []Point {
	if n <= 0 || endRadius < g.baseRadius {
		return []Point{}
	}
	startRadius = math.Max(startRadius, g.baseRadius)

	t0 := g.rollAngle(startRadius)
	t1 := g.rollAngle(endRadius)

	pts := make([]Point, n)
	for i := range pts {
		t := t0
		if n > 1 {
			t = t0 + (t1-t0)*float64(i)/float64(n-1)
		}
		pts[i] = g.InvolutePoint(t)
	}
	return pts
}

func (g Generator) rollAngle(r float64) float64 {
	q := r / g.baseRadius
	return math.Sqrt(math.Max(q*q-1, 0))
}
