package geometry

import (
	"fmt"
	"math"

	"github.com/HendryAvila/hdrive/internal/params"
)

// StrainAnalysis is the Flex Spline fiber strain check.
type StrainAnalysis struct {
	Strain           float64         `json:"strain"`
	StrainPercent    float64         `json:"strain_percent"`
	MaxStrain        float64         `json:"max_strain"`
	MaxStrainPercent float64         `json:"max_strain_percent"`
	IsSafe           bool            `json:"is_safe"`
	SafetyFactor     float64         `json:"safety_factor"`
	Material         params.Material `json:"material"`
}

// Backlash holds tangential and radial tooth clearances in mm.
type Backlash struct {
	TangentialMin     float64 `json:"tangential_min"`
	TangentialMax     float64 `json:"tangential_max"`
	TangentialNominal float64 `json:"tangential_nominal"`
	Radial            float64 `json:"radial"`
}

// Backlash bands as fractions of module.
const (
	BacklashMin     = 0.04
	BacklashMax     = 0.06
	BacklashNominal = 0.05
)

// Strain approximates Flex Spline strain as 2e / r_pitch and checks it
// against the material limit. A zero strain has an infinite safety factor.
func (c Calculator) Strain() StrainAnalysis {
	pitchRadius := c.p.Module() * float64(c.p.TeethFS()) / 2
	strain := 2 * c.p.Eccentricity() / pitchRadius
	limit := c.p.StrainLimit()

	safety := math.Inf(1)
	if strain > 0 {
		safety = limit / strain
	}

	return StrainAnalysis{
		Strain:           strain,
		StrainPercent:    strain * 100,
		MaxStrain:        limit,
		MaxStrainPercent: limit * 100,
		IsSafe:           strain <= limit,
		SafetyFactor:     safety,
		Material:         c.p.Material(),
	}
}

// ContactRatio is the simplified line-of-action over base-pitch estimate.
func (c Calculator) ContactRatio() float64 {
	alpha := c.p.PressureAngleRad()
	m := c.p.Module()
	action := 2 * c.p.Addendum() / math.Sin(alpha)
	basePitch := math.Pi * m * math.Cos(alpha)
	return action / basePitch
}

// Backlash returns the recommended tooth clearance band.
func (c Calculator) Backlash() Backlash {
	m := c.p.Module()
	nominal := BacklashNominal * m
	return Backlash{
		TangentialMin:     BacklashMin * m,
		TangentialMax:     BacklashMax * m,
		TangentialNominal: nominal,
		Radial:            nominal / (2 * math.Tan(c.p.PressureAngleRad())),
	}
}

// Analysis groups the feasibility metrics of a design.
type Analysis struct {
	Strain       StrainAnalysis `json:"strain"`
	ContactRatio float64        `json:"contact_ratio"`
	Backlash     Backlash       `json:"backlash"`
}

// Summary is the full computed picture of one design.
type Summary struct {
	Parameters     params.Input           `json:"parameters"`
	Ratio          float64                `json:"ratio"`
	Eccentricity   float64                `json:"eccentricity"`
	CircularSpline CircularSplineGeometry `json:"circular_spline"`
	FlexSpline     FlexSplineGeometry     `json:"flex_spline"`
	WaveGenerator  WaveGeneratorGeometry  `json:"wave_generator"`
	Analysis       Analysis               `json:"analysis"`
	IsValid        bool                   `json:"is_valid"`
}

// Summary computes every record and metric for the design. IsValid holds
// when strain is safe and the contact ratio exceeds MinContactRatio.
func (c Calculator) Summary() Summary {
	strain := c.Strain()
	cr := c.ContactRatio()
	return Summary{
		Parameters:     c.p.Input(),
		Ratio:          c.p.Ratio(),
		Eccentricity:   c.p.Eccentricity(),
		CircularSpline: c.CircularSpline(),
		FlexSpline:     c.FlexSpline(),
		WaveGenerator:  c.WaveGenerator(),
		Analysis: Analysis{
			Strain:       strain,
			ContactRatio: cr,
			Backlash:     c.Backlash(),
		},
		IsValid: strain.IsSafe && cr > MinContactRatio,
	}
}

// QuickValidation checks a design at the default 30° pressure angle and
// returns whether it is free of errors plus every finding. Warnings carry a
// "WARNING: " prefix and do not affect ok.
func QuickValidation(teethCS int, module float64, material params.Material) (ok bool, messages []string) {
	p, err := params.New(teethCS, module, params.DefaultPressureAngle, params.WithMaterial(material))
	if err != nil {
		return false, []string{err.Error()}
	}

	c := NewCalculator(p)
	var errs, warns []string

	if s := c.Strain(); !s.IsSafe {
		errs = append(errs, fmt.Sprintf("excessive strain %.2f%% > %.2f%%", s.StrainPercent, s.MaxStrainPercent))
	}
	if c.ContactRatio() < MinContactRatio {
		errs = append(errs, fmt.Sprintf("low contact ratio < %.1f", MinContactRatio))
	}
	if teethCS < 100 {
		warns = append(warns, "WARNING: low tooth count (< 100), consider more teeth for smoother motion")
	}
	if module < 0.5 {
		warns = append(warns, "WARNING: small module (< 0.5mm) may be hard to manufacture")
	}

	return len(errs) == 0, append(errs, warns...)
}

// Compensation is the additive-manufacturing adjusted tooth form.
type Compensation struct {
	Addendum       float64 `json:"addendum"`
	Dedendum       float64 `json:"dedendum"`
	ToothThickness float64 `json:"tooth_thickness"`
	Tolerance      float64 `json:"tolerance"`
}

// Compensation shrinks the addendum by the print tolerance, deepens the
// dedendum by a grease clearance and thins the pitch-circle tooth by twice
// the tolerance.
func (c Calculator) Compensation() Compensation {
	m := c.p.Module()
	tol := c.p.PrintTolerance()
	return Compensation{
		Addendum:       c.p.Addendum() - tol,
		Dedendum:       c.p.Dedendum() + GreaseClearance*m,
		ToothThickness: math.Pi*m/2 - 2*tol,
		Tolerance:      tol,
	}
}

// InvolutePoints traces one flank of the CS (internal) or FS (external)
// from its base circle, returning exactly n points. The external trace runs
// out to the addendum circle and collapses to the base point when that
// circle lies inside the base circle. The internal trace runs to the
// parameter sqrt((rb/ra)²−1) and so collapses to the base point whenever
// the CS addendum circle lies outside its base circle.
func (c Calculator) InvolutePoints(n int, internal bool) [][2]float64 {
	if n <= 0 {
		return nil
	}

	var rb, ra float64
	if internal {
		cs := c.CircularSpline()
		rb, ra = cs.BaseDiameter/2, cs.AddendumDiameter/2
	} else {
		fs := c.FlexSpline()
		rb, ra = fs.BaseDiameter/2, fs.AddendumDiameter/2
	}

	var tMax float64
	switch {
	case internal && ra < rb:
		tMax = math.Sqrt((rb/ra)*(rb/ra) - 1)
	case !internal && ra > rb:
		tMax = math.Sqrt((ra/rb)*(ra/rb) - 1)
	}

	pts := make([][2]float64, n)
	for i := range pts {
		var t float64
		if n > 1 {
			t = tMax * float64(i) / float64(n-1)
		}
		pts[i] = [2]float64{
			rb * (math.Cos(t) + t*math.Sin(t)),
			rb * (math.Sin(t) - t*math.Cos(t)),
		}
	}
	return pts
}

// ToothProfilePoints is the flank density used by ToothProfile.
const ToothProfilePoints = 30

// ToothProfile is the calculator-level outline of one tooth: a traced
// flank followed by its mirror, rotated by the pitch-circle tooth angle.
type ToothProfile struct {
	Points         [][2]float64 `json:"points"`
	ToothThickness float64      `json:"tooth_thickness"`
	Internal       bool         `json:"is_internal"`
	Teeth          int          `json:"teeth"`
	Module         float64      `json:"module"`
}

// ToothProfile builds the outline of one CS (internal) or FS tooth from
// InvolutePoints. The result always has 2 × ToothProfilePoints points.
func (c Calculator) ToothProfile(internal bool) ToothProfile {
	teeth, pitchRadius := c.p.TeethFS(), c.FlexSpline().PitchDiameter/2
	if internal {
		teeth, pitchRadius = c.p.TeethCS(), c.CircularSpline().PitchDiameter/2
	}

	flank := c.InvolutePoints(ToothProfilePoints, internal)
	thickness := math.Pi * c.p.Module() / 2
	sin, cos := math.Sincos(thickness / pitchRadius)

	pts := make([][2]float64, 0, 2*len(flank))
	pts = append(pts, flank...)
	for i := len(flank) - 1; i >= 0; i-- {
		x, y := flank[i][0], flank[i][1]
		pts = append(pts, [2]float64{x*cos - y*sin, x*sin + y*cos})
	}

	return ToothProfile{
		Points:         pts,
		ToothThickness: thickness,
		Internal:       internal,
		Teeth:          teeth,
		Module:         c.p.Module(),
	}
}
