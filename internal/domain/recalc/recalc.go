package recalc

import (
	"peptide-labels/internal/domain/dosing"
	"peptide-labels/internal/domain/labels"
	"peptide-labels/internal/domain/settings"
)

// OnInputChanged recalcula todo a partir del estado y las imágenes ya
// obtenidas. Es puro: no persiste ni pide nada.
func OnInputChanged(env Env, st settings.State, barcodes Barcodes) Outcome {
	p := env.Catalog.Resolve(st.PeptideType)
	in := st.DosingInputs(p)

	res, err := dosing.Compute(env.Dosing, in)
	valid := err == nil

	selected, ok := labels.ParseSymbology(st.Symbology)
	if !ok {
		selected = labels.SymbologyQR
	}

	content := labels.Content{
		FreeText:  st.LabelText,
		Date:      st.LabelDate,
		TargetURL: st.LabelURL(),
	}.Normalize(env.Labels.Options().DefaultURL)

	out := Outcome{
		State:   st,
		Profile: p,
		Inputs:  in,
		Result:  res,
		Valid:   valid,
		URL:     content.TargetURL,
	}

	for _, sym := range env.symbologies() {
		img := barcodes[sym]
		for _, v := range env.variants() {
			lo := LabelOutcome{
				Variant:   v,
				Symbology: sym,
				Selected:  sym == selected,
			}
			if img == nil {
				lo.Error = MsgImageUnavailable
				out.Labels = append(out.Labels, lo)
				continue
			}

			l, err := env.Labels.Layout(img, labels.BuildInput{
				Content:   content,
				Variant:   v,
				Symbology: sym,
				Dose:      in,
				Result:    res,
			})
			if err != nil {
				lo.Error = err.Error()
			} else {
				lo.Layout = &l
			}
			out.Labels = append(out.Labels, lo)
		}
	}

	return out
}
