package params

// Input is the plain, serializable form of a design as it arrives from
// tool arguments, config defaults or design files. A nil optional field
// means "use the default"; a non-nil one is passed to New as given, so an
// explicit zero is validated rather than replaced.
type Input struct {
	TeethCS             int      `json:"teeth_cs" yaml:"teeth_cs"`
	Module              float64  `json:"module" yaml:"module"`
	PressureAngle       *float64 `json:"pressure_angle,omitempty" yaml:"pressure_angle,omitempty"`
	Material            Material `json:"material,omitempty" yaml:"material,omitempty"`
	AddendumFactor      *float64 `json:"addendum_factor,omitempty" yaml:"addendum_factor,omitempty"`
	DedendumFactor      *float64 `json:"dedendum_factor,omitempty" yaml:"dedendum_factor,omitempty"`
	WallThicknessFactor *float64 `json:"wall_thickness_factor,omitempty" yaml:"wall_thickness_factor,omitempty"`
	PrintTolerance      *float64 `json:"print_tolerance,omitempty" yaml:"print_tolerance,omitempty"`
}

// FromInput fills defaults for unset optional fields and runs New.
func FromInput(in Input) (Params, error) {
	pa := DefaultPressureAngle
	if in.PressureAngle != nil {
		pa = *in.PressureAngle
	}

	var opts []Option
	if in.Material != "" {
		opts = append(opts, WithMaterial(in.Material))
	}
	if in.AddendumFactor != nil {
		opts = append(opts, WithAddendumFactor(*in.AddendumFactor))
	}
	if in.DedendumFactor != nil {
		opts = append(opts, WithDedendumFactor(*in.DedendumFactor))
	}
	if in.WallThicknessFactor != nil {
		opts = append(opts, WithWallThicknessFactor(*in.WallThicknessFactor))
	}
	if in.PrintTolerance != nil {
		opts = append(opts, WithPrintTolerance(*in.PrintTolerance))
	}

	return New(in.TeethCS, in.Module, pa, opts...)
}

// Input returns the fully populated plain form of p.
func (p Params) Input() Input {
	return Input{
		TeethCS:             p.teethCS,
		Module:              p.module,
		PressureAngle:       Float64(p.pressureAngle),
		Material:            p.material,
		AddendumFactor:      Float64(p.addendumFactor),
		DedendumFactor:      Float64(p.dedendumFactor),
		WallThicknessFactor: Float64(p.wallThicknessFactor),
		PrintTolerance:      Float64(p.printTolerance),
	}
}

// Float64 returns a pointer to v, for setting an optional Input field.
func Float64(v float64) *float64 { return &v }

// Value dereferences an optional Input field, returning zero when unset.
func Value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
