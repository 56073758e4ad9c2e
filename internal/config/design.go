package config

import (
	"fmt"
	"os"

	"github.com/titanous/json5"

	"github.com/HendryAvila/hdrive/internal/params"
)

// DesignFile is the on-disk form of one design. Comments and trailing
// commas are allowed.
//
//	{
//	  name: "80:1 plastic",  // optional
//	  teeth_cs: 160,
//	  module: 0.5,
//	  material: "plastic",
//	}
type DesignFile struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
	params.Input
}

// ReadDesign decodes a JSON5 design file without validating it.
func ReadDesign(path string) (DesignFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DesignFile{}, fmt.Errorf("config: read design %s: %w", path, err)
	}
	var df DesignFile
	if err := json5.Unmarshal(data, &df); err != nil {
		return DesignFile{}, fmt.Errorf("config: parse design %s: %w", path, err)
	}
	return df, nil
}

// LoadDesign reads a design file, fills unset optional fields from
// defaults and validates the result.
func LoadDesign(path string, defaults DesignConfig) (params.Params, error) {
	df, err := ReadDesign(path)
	if err != nil {
		return params.Params{}, err
	}
	return params.FromInput(defaults.Defaults(df.Input))
}
