package dosing

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// ResolveDriving decide qué campo manda.
// - Driving explícito (último campo editado) siempre gana, aunque venga vacío:
//   en ese caso el cálculo no tiene resultado.
// - Sin Driving (carga inicial): concentración si está presente; si no, unidades.
func ResolveDriving(in Inputs) DrivingField {
	switch in.Driving {
	case DrivingUnits, DrivingConcentration:
		return in.Driving
	}

	if positive(in.ConcentrationMgPerMl) {
		return DrivingConcentration
	}
	return DrivingUnits
}

// Compute convierte entre dosis, unidades y concentración para un vial dado.
// Entrada inválida => (NoResult, ErrInvalidInput). Nunca entra en pánico.
func Compute(cfg Config, in Inputs) (Result, error) {
	if !positive(in.VialMassMg) || !positive(in.DoseMg) {
		return NoResult, ErrInvalidInput
	}
	if !positive(cfg.UnitsPerMl) {
		return NoResult, fmt.Errorf("%w: units per ml must be > 0", ErrInvalidInput)
	}

	numVials := in.NumVials
	switch {
	case numVials == 0:
		numVials = 1
	case !positive(numVials):
		return NoResult, ErrInvalidInput
	}

	driving := ResolveDriving(in)

	var volume, units, concentration, totalUnits float64
	switch driving {
	case DrivingConcentration:
		if !positive(in.ConcentrationMgPerMl) {
			return NoResult, ErrInvalidInput
		}
		concentration = in.ConcentrationMgPerMl
		volume = in.VialMassMg / concentration
		units = (in.DoseMg * cfg.UnitsPerMl) / concentration
		totalUnits = volume * cfg.UnitsPerMl
	default:
		if !positive(in.UnitsPerDose) {
			return NoResult, ErrInvalidInput
		}
		units = in.UnitsPerDose
		totalUnits = (in.VialMassMg / in.DoseMg) * units
		volume = totalUnits / cfg.UnitsPerMl
		concentration = in.VialMassMg / volume
	}

	dosesPerVial := in.VialMassMg / in.DoseMg

	threshold := cfg.ThresholdMgPerMl
	if in.ThresholdMgPerMl != nil {
		threshold = *in.ThresholdMgPerMl
	}

	r := Result{
		ReconstitutionVolumeMl: volume,
		TotalVolumeMl:          volume * numVials,
		TotalUnits:             totalUnits,
		UnitsPerDose:           units,
		DosesPerVial:           dosesPerVial,
		TotalDoses:             dosesPerVial * numVials,
		ConcentrationMgPerMl:   concentration,
		NumVials:               numVials,
		Driving:                driving,
		ThresholdMgPerMl:       threshold,
		ThresholdChecked:       threshold > 0,
	}

	if r.ThresholdChecked {
		// estricto: igual al umbral no dispara
		r.ExceedsThreshold = concentration > threshold
	}
	if positive(cfg.MaxVialVolumeMl) {
		r.TooMuchLiquid = r.TotalVolumeMl > cfg.MaxVialVolumeMl
	}
	if positive(cfg.MinUnitsPerDose) {
		r.LowPrecision = units < cfg.MinUnitsPerDose
	}

	r.Warnings = warningsFor(cfg, r)
	return r, nil
}

func warningsFor(cfg Config, r Result) []Warning {
	out := make([]Warning, 0, 3)

	if !r.ThresholdChecked {
		out = append(out, Warning{
			Code:          WarningThresholdNotChecked,
			Message:       "No concentration limit is defined for this peptide type.",
			Informational: true,
		})
	}
	if r.ExceedsThreshold {
		out = append(out, Warning{
			Code: WarningHighConcentration,
			Message: fmt.Sprintf(
				"Warning: Calculated concentration exceeds the recommended maximum of %s mg/ml.",
				formatNumber(r.ThresholdMgPerMl),
			),
		})
	}
	if r.TooMuchLiquid {
		out = append(out, Warning{
			Code: WarningTooMuchLiquid,
			Message: fmt.Sprintf(
				"Warning: %.2f ml of liquid does not fit in a %s ml vial.",
				r.TotalVolumeMl,
				formatNumber(cfg.MaxVialVolumeMl),
			),
		})
	}
	if r.LowPrecision {
		out = append(out, Warning{
			Code: WarningLowPrecision,
			Message: fmt.Sprintf(
				"Warning: %.1f units per dose is below %s units and hard to measure precisely.",
				r.UnitsPerDose,
				formatNumber(cfg.MinUnitsPerDose),
			),
		})
	}

	return out
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
