package params

import "fmt"

// --- Material enum ---

// Material selects the allowable Flex Spline strain limit.
type Material string

const (
	MaterialSteel    Material = "steel"
	MaterialAluminum Material = "aluminum"
	MaterialPlastic  Material = "plastic"
	MaterialTPU      Material = "tpu"
)

// Allowable fiber strain per material (dimensionless).
const (
	StrainLimitSteel    = 0.003
	StrainLimitAluminum = 0.004
	StrainLimitPlastic  = 0.02
	StrainLimitTPU      = 0.05
)

// strainLimits is the fixed limit table, keyed by material.
var strainLimits = map[Material]float64{
	MaterialSteel:    StrainLimitSteel,
	MaterialAluminum: StrainLimitAluminum,
	MaterialPlastic:  StrainLimitPlastic,
	MaterialTPU:      StrainLimitTPU,
}

// Materials returns the supported materials in a stable order.
func Materials() []Material {
	return []Material{MaterialSteel, MaterialAluminum, MaterialPlastic, MaterialTPU}
}

// ValidateMaterial returns an error if the material is not recognized.
func ValidateMaterial(m Material) error {
	if _, ok := strainLimits[m]; !ok {
		return fmt.Errorf("invalid material %q: must be one of: steel, aluminum, plastic, tpu", m)
	}
	return nil
}

// StrainLimit returns the allowable strain for m. Unknown materials fall
// back to the steel limit, the most conservative entry.
func StrainLimit(m Material) float64 {
	if limit, ok := strainLimits[m]; ok {
		return limit
	}
	return StrainLimitSteel
}
