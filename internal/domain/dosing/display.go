package dosing

import (
	"fmt"
	"math"
	"strconv"
)

// Placeholder es lo que se muestra cuando no hay resultado.
const Placeholder = "-"

// Display son los textos listos para pantalla.
type Display struct {
	ReconstitutionVolume string
	TotalVolume          string
	DosesPerVial         string
	Concentration        string
	UnitsPerDose         string
	Warnings             []string
	Notes                []string
}

func NoResultDisplay() Display {
	return Display{
		ReconstitutionVolume: Placeholder,
		TotalVolume:          Placeholder,
		DosesPerVial:         Placeholder,
		Concentration:        Placeholder,
		UnitsPerDose:         Placeholder,
		Warnings:             []string{},
		Notes:                []string{},
	}
}

func (r Result) Display() Display {
	if !r.Valid() {
		return NoResultDisplay()
	}

	d := Display{
		ReconstitutionVolume: fmt.Sprintf("%.2f ml", r.ReconstitutionVolumeMl),
		TotalVolume:          fmt.Sprintf("%.2f ml", r.TotalVolumeMl),
		DosesPerVial:         fmt.Sprintf("%.1f doses", r.DosesPerVial),
		Concentration:        fmt.Sprintf("%.2fmg/ml", r.ConcentrationMgPerMl),
		UnitsPerDose:         fmt.Sprintf("%su", FormatNumber(r.UnitsPerDose)),
		Warnings:             []string{},
		Notes:                []string{},
	}
	for _, w := range r.Warnings {
		if w.Informational {
			d.Notes = append(d.Notes, w.Message)
			continue
		}
		d.Warnings = append(d.Warnings, w.Message)
	}
	return d
}

// FormatNumber imprime un número sin ceros de relleno, a lo sumo 2 decimales
// (5 => "5", 2.5 => "2.5", 16.6667 => "16.67").
func FormatNumber(v float64) string {
	return formatNumber(v)
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
