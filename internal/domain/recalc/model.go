package recalc

import (
	"image"

	"peptide-labels/internal/domain/dosing"
	"peptide-labels/internal/domain/labels"
	"peptide-labels/internal/domain/profiles"
	"peptide-labels/internal/domain/settings"
)

const (
	MsgImageUnavailable = "Failed to load barcode image. Please try again."
	MsgShortenFailed    = "Could not shorten the URL; the full URL is used on the label."
)

// Env agrupa lo que no cambia entre recálculos.
type Env struct {
	Dosing  dosing.Config
	Catalog *profiles.Catalog
	Labels  *labels.Service

	// Variants / Symbologies a componer. Vacío = todas.
	Variants    []labels.Variant
	Symbologies []labels.Symbology
}

func (e Env) variants() []labels.Variant {
	if len(e.Variants) == 0 {
		return []labels.Variant{labels.VariantReconstituted, labels.VariantUnreconstituted}
	}
	return e.Variants
}

func (e Env) symbologies() []labels.Symbology {
	if len(e.Symbologies) == 0 {
		return []labels.Symbology{labels.SymbologyQR, labels.SymbologyDataMatrix}
	}
	return e.Symbologies
}

// Barcodes son las imágenes ya obtenidas, por simbología. Una ausente
// significa que el proveedor falló.
type Barcodes map[labels.Symbology]image.Image

// LabelOutcome es una etiqueta del recálculo: layout o mensaje de error.
type LabelOutcome struct {
	Variant   labels.Variant
	Symbology labels.Symbology
	Selected  bool

	Layout *labels.Layout
	Error  string
}

// Outcome es todo lo que la vista necesita después de un cambio.
type Outcome struct {
	Generation uint64

	State   settings.State
	Profile profiles.Profile

	Inputs dosing.Inputs
	Result dosing.Result
	Valid  bool

	// URL es lo que se codifica en el código (corta o larga).
	URL           string
	ShortURLError string

	Labels []LabelOutcome
}

// Label busca una etiqueta por variante y simbología.
func (o Outcome) Label(v labels.Variant, sym labels.Symbology) (LabelOutcome, bool) {
	for _, l := range o.Labels {
		if l.Variant == v && l.Symbology == sym {
			return l, true
		}
	}
	return LabelOutcome{}, false
}
