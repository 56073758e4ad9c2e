package involute

import (
	"fmt"
	"math"
)

// MinContactRatio is the threshold below which a profile's contact ratio
// draws a warning.
const MinContactRatio = 1.2

// undercutSlack absorbs rounding in 2 / sin²(α), which lands just above 8 at 30°.
const undercutSlack = 1e-9

// SingleToothProfile returns one closed tooth contour in the order right
// flank (root to tip), tip arc, left flank (tip to root), root arc. The
// left flank mirrors the right about the x axis and rotates it by the
// tooth thickness angle. The contour is empty when the outside circle does
// not reach the base circle.
func (g Generator) SingleToothProfile() []Point {
	right := g.InvolutePoints(g.rootRadius, g.outsideRadius, g.toothPoints/2)
	if len(right) == 0 {
		return []Point{}
	}

	toothAngle := g.toothThickness / g.pitchRadius
	left := make([]Point, len(right))
	for i := range right {
		p := right[len(right)-1-i]
		left[i] = Point{X: p.X, Y: -p.Y}.rotate(toothAngle)
	}

	profile := make([]Point, 0, g.ContourLen())
	profile = append(profile, right...)
	profile = append(profile, g.arc(right[len(right)-1], left[0])...)
	profile = append(profile, left...)
	profile = append(profile, g.arc(left[len(left)-1], right[0])...)
	return profile
}

// arc returns the interior points of a circular arc from a to b at their
// mean radius, angles interpolated linearly. The root closure uses the same
// construction; FilletRadius is reported but does not constrain it.
func (g Generator) arc(a, b Point) []Point {
	r := (a.Radius() + b.Radius()) / 2
	from, to := a.Angle(), b.Angle()

	pts := make([]Point, 0, g.arcPoints-1)
	for i := 1; i < g.arcPoints; i++ {
		t := float64(i) / float64(g.arcPoints)
		pts = append(pts, polar(r, from+(to-from)*t))
	}
	return pts
}

// GearProfile replicates the tooth contour at every tooth position, 2π/teeth
// apart. For an internal gear each point is first inverted about the pitch
// circle (r' = 2·r_pitch − r, angle kept) so the teeth face inward.
func (g Generator) GearProfile(internal bool) [][]Point {
	tooth := g.SingleToothProfile()
	if g.teeth <= 0 {
		return [][]Point{}
	}
	if internal {
		inverted := make([]Point, len(tooth))
		for i, p := range tooth {
			inverted[i] = polar(2*g.pitchRadius-p.Radius(), p.Angle())
		}
		tooth = inverted
	}

	pitch := 2 * math.Pi / float64(g.teeth)
	teeth := make([][]Point, g.teeth)
	for i := range teeth {
		angle := float64(i) * pitch
		contour := make([]Point, len(tooth))
		for j, p := range tooth {
			contour[j] = p.rotate(angle)
		}
		teeth[i] = contour
	}
	return teeth
}

// ProfileReport is the soft validation result of one gear profile.
type ProfileReport struct {
	Valid            bool     `json:"valid"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
	ContactRatio     float64  `json:"contact_ratio"`
	MinTeethUndercut float64  `json:"min_teeth_no_undercut"`
	BaseExceedsRoot  bool     `json:"base_exceeds_root"`
}

// MinTeethNoUndercut is 2 / sin²(α), the smallest tooth count free of
// undercut at the generator's pressure angle.
func (g Generator) MinTeethNoUndercut() float64 {
	s := math.Sin(g.PressureAngleRad())
	return 2 / (s * s)
}

// ContactRatio is the action length sqrt(ro²−rb²) + sqrt(rp²−rb²) over the
// base pitch π·m·cos α.
func (g Generator) ContactRatio() float64 {
	rb2 := g.baseRadius * g.baseRadius
	action := math.Sqrt(math.Max(g.outsideRadius*g.outsideRadius-rb2, 0)) +
		math.Sqrt(math.Max(g.pitchRadius*g.pitchRadius-rb2, 0))
	basePitch := math.Pi * g.module * math.Cos(g.PressureAngleRad())
	return action / basePitch
}

// ValidateProfile checks undercut (error), base-over-root interference and
// contact ratio (warnings).
func (g Generator) ValidateProfile() ProfileReport {
	r := ProfileReport{
		Valid:            true,
		Errors:           []string{},
		Warnings:         []string{},
		ContactRatio:     g.ContactRatio(),
		MinTeethUndercut: g.MinTeethNoUndercut(),
	}

	if float64(g.teeth) < r.MinTeethUndercut-undercutSlack {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"tooth count (%d) below the undercut minimum (%.0f)", g.teeth, r.MinTeethUndercut))
		r.Valid = false
	}
	if g.baseRadius > g.rootRadius {
		r.BaseExceedsRoot = true
		r.Warnings = append(r.Warnings, "base radius exceeds root radius, possible interference")
	}
	if r.ContactRatio < MinContactRatio {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"low contact ratio (%.2f < %.1f)", r.ContactRatio, MinContactRatio))
	}
	return r
}
