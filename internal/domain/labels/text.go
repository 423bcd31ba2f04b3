package labels

import (
	"fmt"
	"math"
	"time"

	"peptide-labels/internal/domain/dosing"
)

const isoDate = "2006-01-02"

// FormatDate convierte YYYY-MM-DD a MMDDYY. Fecha vacía o inválida => "".
func FormatDate(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(isoDate, iso)
	if err != nil {
		return ""
	}
	return t.Format("010206")
}

// BuildLines arma el texto de la etiqueta para la variante pedida.
// Sin resultado de dosis los números se reemplazan por guiones.
func BuildLines(v Variant, c Content, in dosing.Inputs, res dosing.Result) Lines {
	date := FormatDate(c.Date)
	withDate := func(s string) string {
		if date == "" {
			return s
		}
		return s + "|" + date
	}

	switch v {
	case VariantUnreconstituted:
		vial := dosing.Placeholder
		if in.VialMassMg > 0 {
			vial = dosing.FormatNumber(in.VialMassMg)
		}
		volume := dosing.Placeholder
		if res.Valid() {
			volume = fmt.Sprintf("%.2f", res.ReconstitutionVolumeMl)
		}
		return Lines{
			c.FreeText,
			withDate(vial + "mg"),
			"+" + volume + "ml",
		}
	default:
		conc, dose, units := dosing.Placeholder, dosing.Placeholder, dosing.Placeholder
		if res.Valid() {
			conc = fmt.Sprintf("%d", int64(math.Round(res.ConcentrationMgPerMl)))
			dose = dosing.FormatNumber(in.DoseMg)
			units = dosing.FormatNumber(res.UnitsPerDose)
		}
		return Lines{
			c.FreeText,
			withDate(conc + " mg/ml"),
			dose + "mg/" + units + "u",
		}
	}
}
