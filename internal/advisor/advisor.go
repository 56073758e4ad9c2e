// Package advisor searches for harmonic drive designs that meet a target
// reduction ratio inside a diameter budget, and evaluates batches of
// candidate designs concurrently.
package advisor

import (
	"errors"
	"fmt"
	"math"

	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/params"
)

// ErrNoSolution reports that no standard design satisfies the request.
var ErrNoSolution = errors.New("advisor: no solution")

// StandardModules are the module values Suggest tries, largest first.
var StandardModules = []float64{3.0, 2.5, 2.0, 1.5, 1.25, 1.0, 0.8, 0.6, 0.5, 0.4, 0.3}

// Modules returns a copy of StandardModules.
func Modules() []float64 {
	out := make([]float64, len(StandardModules))
	copy(out, StandardModules)
	return out
}

// TeethForRatio is the smallest even Circular Spline tooth count that gives
// at least the requested reduction ratio.
func TeethForRatio(ratio float64) int {
	teeth := int(math.Ceil(2 * ratio))
	if teeth%2 != 0 {
		teeth++
	}
	return teeth
}

// Suggest picks the largest standard module whose pitch diameter fits
// maxDiameter and whose Flex Spline strain is safe for material, at the
// default pressure angle. The error wraps ErrNoSolution when the ratio
// needs a tooth count outside the legal range or no module qualifies.
func Suggest(ratio, maxDiameter float64, material params.Material) (params.Params, error) {
	if err := params.ValidateMaterial(material); err != nil {
		return params.Params{}, fmt.Errorf("advisor: %w", err)
	}
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return params.Params{}, fmt.Errorf("%w: ratio must be a positive number", ErrNoSolution)
	}
	if !(maxDiameter > 0) {
		return params.Params{}, fmt.Errorf("%w: max diameter must be a positive number", ErrNoSolution)
	}

	teeth := TeethForRatio(ratio)
	if teeth < params.MinTeethCS || teeth > params.MaxTeethCS {
		return params.Params{}, fmt.Errorf("%w: ratio %.4g needs %d teeth, outside [%d, %d]",
			ErrNoSolution, ratio, teeth, params.MinTeethCS, params.MaxTeethCS)
	}

	for _, m := range StandardModules {
		if m*float64(teeth) > maxDiameter {
			continue
		}
		p, err := params.New(teeth, m, params.DefaultPressureAngle, params.WithMaterial(material))
		if err != nil {
			return params.Params{}, fmt.Errorf("advisor: build candidate: %w", err)
		}
		if geometry.NewCalculator(p).Strain().IsSafe {
			return p, nil
		}
	}
	return params.Params{}, fmt.Errorf("%w: no standard module fits %d teeth in %.4gmm with safe %s strain",
		ErrNoSolution, teeth, maxDiameter, material)
}
