package involute

import (
	"math"
	"strings"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestNew_DerivedRadii(t *testing.T) {
	g := New(20, 1, 20)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"pitch radius", g.PitchRadius(), 10},
		{"base radius", g.BaseRadius(), 10 * math.Cos(20*math.Pi/180)},
		{"outside radius", g.OutsideRadius(), 11},
		{"root radius", g.RootRadius(), 8.75},
		{"tooth thickness", g.ToothThickness(), math.Pi / 2},
		{"fillet radius", g.FilletRadius(), 0.38},
	}
	for _, c := range checks {
		if !near(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestWithAddendum_MovesOutsideRadius(t *testing.T) {
	g := New(160, 0.5, 30, WithAddendum(0.4))
	if g.Addendum() != 0.4 {
		t.Errorf("Addendum = %v, want 0.4", g.Addendum())
	}
	if !near(g.OutsideRadius(), 40.4) {
		t.Errorf("OutsideRadius = %v, want 40.4", g.OutsideRadius())
	}
}

func TestInvoluteFunction(t *testing.T) {
	if got := InvoluteFunction(0); got != 0 {
		t.Errorf("inv(0) = %v, want 0", got)
	}
	// Standard table value for 20°.
	if got := InvoluteFunction(20 * math.Pi / 180); math.Abs(got-0.014904) > 1e-6 {
		t.Errorf("inv(20°) = %v, want 0.014904", got)
	}
}

func TestInvolutePoint_StartsOnBaseCircle(t *testing.T) {
	for _, g := range []Generator{New(20, 1, 20), New(160, 0.5, 30), New(320, 5, 25)} {
		p := g.InvolutePoint(0)
		if !near(p.X, g.BaseRadius()) || !near(p.Y, 0) {
			t.Errorf("InvolutePoint(0) = %+v, want (%v, 0)", p, g.BaseRadius())
		}
	}
}

func TestInvolutePoint_RadiusGrowsWithRollAngle(t *testing.T) {
	g := New(20, 1, 20)
	for _, tt := range []float64{0.1, 0.5, 1} {
		want := g.BaseRadius() * math.Sqrt(1+tt*tt)
		if got := g.InvolutePoint(tt).Radius(); !near(got, want) {
			t.Errorf("radius at t=%v = %v, want %v", tt, got, want)
		}
	}
}

func TestInvolutePoints(t *testing.T) {
	g := New(20, 1, 20)
	rb := g.BaseRadius()

	tests := []struct {
		name       string
		start, end float64
		n          int
		wantLen    int
	}{
		{"end below base", 5, rb - 0.01, 10, 0},
		{"zero points", 9.5, 11, 0, 0},
		{"negative points", 9.5, 11, -3, 0},
		{"single point", 9.5, 11, 1, 1},
		{"normal span", 9.5, 11, 15, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := g.InvolutePoints(tt.start, tt.end, tt.n)
			if pts == nil {
				t.Fatal("InvolutePoints returned nil, want a non-nil slice")
			}
			if len(pts) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(pts), tt.wantLen)
			}
		})
	}

	pts := g.InvolutePoints(9.5, 11, 15)
	if !near(pts[0].Radius(), 9.5) {
		t.Errorf("first radius = %v, want 9.5", pts[0].Radius())
	}
	if !near(pts[14].Radius(), 11) {
		t.Errorf("last radius = %v, want 11", pts[14].Radius())
	}
	if one := g.InvolutePoints(9.5, 11, 1); !near(one[0].Radius(), 9.5) {
		t.Errorf("single point radius = %v, want start radius 9.5", one[0].Radius())
	}
}

func TestInvolutePoints_ClampsStartToBase(t *testing.T) {
	g := New(20, 1, 20)
	pts := g.InvolutePoints(g.RootRadius(), g.OutsideRadius(), 10)
	if !near(pts[0].X, g.BaseRadius()) || !near(pts[0].Y, 0) {
		t.Errorf("first point = %+v, want base point", pts[0])
	}
}

func TestSingleToothProfile_Structure(t *testing.T) {
	g := New(20, 1, 20)
	profile := g.SingleToothProfile()

	if len(profile) != 38 {
		t.Fatalf("len = %d, want 38 (15 + 4 + 15 + 4)", len(profile))
	}
	if g.ContourLen() != 38 {
		t.Errorf("ContourLen = %d, want 38", g.ContourLen())
	}

	right := profile[0:15]
	tip := profile[15:19]
	left := profile[19:34]

	// Left flank mirrors the right flank in reverse order.
	for i := range left {
		if !near(left[i].Radius(), right[14-i].Radius()) {
			t.Errorf("left[%d] radius %v != right[%d] radius %v", i, left[i].Radius(), 14-i, right[14-i].Radius())
		}
	}

	// Tip arc sits at the mean radius of both flank tips.
	tipR := (right[14].Radius() + left[0].Radius()) / 2
	for i, p := range tip {
		if !near(p.Radius(), tipR) {
			t.Errorf("tip[%d] radius = %v, want %v", i, p.Radius(), tipR)
		}
	}

	// The flank tips straddle the tooth's symmetry axis at half the tooth angle.
	toothAngle := g.ToothThickness() / g.PitchRadius()
	if mid := (right[14].Angle() + left[0].Angle()) / 2; !near(mid, toothAngle/2) {
		t.Errorf("tip symmetry axis at %v, want %v", mid, toothAngle/2)
	}
}

func TestSingleToothProfile_CustomDensity(t *testing.T) {
	g := New(20, 1, 20, WithToothPoints(10), WithArcPoints(3))
	if got := len(g.SingleToothProfile()); got != 14 {
		t.Errorf("len = %d, want 14 (5 + 2 + 5 + 2)", got)
	}

	ignored := New(20, 1, 20, WithToothPoints(1), WithArcPoints(0))
	if ignored.ToothPoints() != DefaultToothPoints || ignored.ArcPoints() != DefaultArcPoints {
		t.Errorf("out-of-range densities should be ignored, got %d/%d", ignored.ToothPoints(), ignored.ArcPoints())
	}
}

func TestSingleToothProfile_EmptyWhenNoInvolute(t *testing.T) {
	// Outside radius 8 lies inside the base circle (8.66).
	g := New(20, 1, 30, WithAddendum(-2))
	if got := g.SingleToothProfile(); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestGearProfile_External(t *testing.T) {
	g := New(24, 1, 20)
	teeth := g.GearProfile(false)
	if len(teeth) != 24 {
		t.Fatalf("teeth = %d, want 24", len(teeth))
	}

	base := g.SingleToothProfile()
	pitch := 2 * math.Pi / 24
	for k, contour := range teeth {
		if len(contour) != len(base) {
			t.Fatalf("tooth %d len = %d, want %d", k, len(contour), len(base))
		}
		for i, p := range contour {
			want := base[i].rotate(float64(k) * pitch)
			if !near(p.X, want.X) || !near(p.Y, want.Y) {
				t.Fatalf("tooth %d point %d = %+v, want %+v", k, i, p, want)
			}
		}
	}
}

func TestGearProfile_InternalInvertsAboutPitchCircle(t *testing.T) {
	g := New(160, 0.5, 30)
	base := g.SingleToothProfile()
	teeth := g.GearProfile(true)

	if len(teeth) != 160 {
		t.Fatalf("teeth = %d, want 160", len(teeth))
	}
	for i, p := range teeth[0] {
		if sum := p.Radius() + base[i].Radius(); !near(sum, 2*g.PitchRadius()) {
			t.Fatalf("point %d: r + r' = %v, want %v", i, sum, 2*g.PitchRadius())
		}
		if !near(p.Angle(), base[i].Angle()) {
			t.Fatalf("point %d: angle %v changed from %v", i, p.Angle(), base[i].Angle())
		}
	}

	// Internal tips point inward: the innermost point lies inside the pitch circle.
	minR := math.Inf(1)
	for _, p := range teeth[0] {
		minR = math.Min(minR, p.Radius())
	}
	if !(minR < g.PitchRadius()) {
		t.Errorf("innermost radius %v should be inside the pitch circle %v", minR, g.PitchRadius())
	}
}

func TestValidateProfile_Undercut(t *testing.T) {
	tests := []struct {
		name      string
		teeth     int
		pa        float64
		wantValid bool
	}{
		{"20° just below minimum", 17, 20, false},
		{"20° just above minimum", 18, 20, true},
		{"30° below minimum", 7, 30, false},
		{"30° exactly at minimum", 8, 30, true},
		{"30° above minimum", 9, 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.teeth, 1, tt.pa).ValidateProfile()
			if r.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (errors %v)", r.Valid, tt.wantValid, r.Errors)
			}
			if r.Valid != (len(r.Errors) == 0) {
				t.Errorf("Valid = %v inconsistent with errors %v", r.Valid, r.Errors)
			}
		})
	}

	if got := New(20, 1, 20).MinTeethNoUndercut(); math.Abs(got-17.097) > 0.001 {
		t.Errorf("MinTeethNoUndercut(20°) = %v, want ~17.1", got)
	}
	if got := New(20, 1, 30).MinTeethNoUndercut(); math.Abs(got-8) > eps {
		t.Errorf("MinTeethNoUndercut(30°) = %v, want 8", got)
	}
}

func TestValidateProfile_Warnings(t *testing.T) {
	small := New(20, 1, 20).ValidateProfile()
	if !small.BaseExceedsRoot {
		t.Error("20-tooth 20° gear has its base circle outside the root circle")
	}
	if !containsPart(small.Warnings, "possible interference") {
		t.Errorf("warnings %v missing interference warning", small.Warnings)
	}

	large := New(200, 1, 20).ValidateProfile()
	if large.BaseExceedsRoot || len(large.Warnings) != 0 {
		t.Errorf("200-tooth gear should have no warnings, got %v", large.Warnings)
	}
	if large.Errors == nil || large.Warnings == nil {
		t.Error("report slices must be non-nil")
	}

	// Contact ratio grows with tooth count, so only a tiny pinion drops below 1.2.
	shallow := New(8, 1, 20, WithAddendum(0.01)).ValidateProfile()
	if !containsPart(shallow.Warnings, "low contact ratio") {
		t.Errorf("contact ratio %.2f should draw a warning, got %v", shallow.ContactRatio, shallow.Warnings)
	}
}

func TestContactRatio(t *testing.T) {
	g := New(20, 1, 20)
	rb, ro, rp := g.BaseRadius(), g.OutsideRadius(), g.PitchRadius()
	want := (math.Sqrt(ro*ro-rb*rb) + math.Sqrt(rp*rp-rb*rb)) / (math.Pi * math.Cos(20*math.Pi/180))
	if got := g.ContactRatio(); !near(got, want) {
		t.Errorf("ContactRatio = %v, want %v", got, want)
	}
}

func containsPart(msgs []string, part string) bool {
	for _, m := range msgs {
		if strings.Contains(m, part) {
			return true
		}
	}
	return false
}
