package profiles

import "slices"

// Profile (tipo de péptido) reemplaza los valores permitidos y los defaults.
// No cambia las fórmulas del cálculo.
type Profile struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	VialMasses []float64 `yaml:"vial_masses"` // mg
	Doses      []float64 `yaml:"doses"`       // mg
	Units      []float64 `yaml:"units"`       // unidades de jeringa

	DefaultVialMass float64 `yaml:"default_vial_mass"`
	DefaultDose     float64 `yaml:"default_dose"`
	DefaultUnits    float64 `yaml:"default_units"`

	// ThresholdMgPerMl <= 0 significa "sin chequeo".
	ThresholdMgPerMl float64 `yaml:"threshold_mg_per_ml"`
}

// Threshold devuelve el umbral listo para dosing.Inputs.
func (p Profile) Threshold() *float64 {
	t := p.ThresholdMgPerMl
	return &t
}

// AllowsVialMass: false significa que el valor sale de un input "Custom".
func (p Profile) AllowsVialMass(v float64) bool { return slices.Contains(p.VialMasses, v) }
func (p Profile) AllowsDose(v float64) bool     { return slices.Contains(p.Doses, v) }
func (p Profile) AllowsUnits(v float64) bool    { return slices.Contains(p.Units, v) }

// Option es un ítem de dropdown.
type Option struct {
	Value  string
	Label  string
	Custom bool
}
