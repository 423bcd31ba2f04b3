package labels

import "strings"

// Symbology del código impreso.
// @Enum qr, datamatrix
type Symbology string

const (
	SymbologyQR         Symbology = "qr"
	SymbologyDataMatrix Symbology = "datamatrix"
)

func ParseSymbology(s string) (Symbology, bool) {
	switch Symbology(strings.ToLower(strings.TrimSpace(s))) {
	case "", SymbologyQR:
		return SymbologyQR, true
	case SymbologyDataMatrix, "data_matrix", "dm":
		return SymbologyDataMatrix, true
	default:
		return "", false
	}
}

// Variant: etiqueta del vial ya reconstituido o del vial en polvo.
// @Enum reconstituted, unreconstituted
type Variant string

const (
	VariantReconstituted   Variant = "reconstituted"
	VariantUnreconstituted Variant = "unreconstituted"
)

func ParseVariant(s string) (Variant, bool) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "", VariantReconstituted:
		return VariantReconstituted, true
	case VariantUnreconstituted, "powder":
		return VariantUnreconstituted, true
	default:
		return "", false
	}
}

const DefaultText = "Peptide"

// Content es lo que escribe el usuario para la etiqueta.
type Content struct {
	FreeText  string
	Date      string // ISO YYYY-MM-DD, vacío = sin fecha
	TargetURL string
}

// Normalize aplica los defaults (texto "Peptide", URL configurada).
func (c Content) Normalize(defaultURL string) Content {
	c.FreeText = strings.TrimSpace(c.FreeText)
	if c.FreeText == "" {
		c.FreeText = DefaultText
	}
	c.Date = strings.TrimSpace(c.Date)
	c.TargetURL = strings.TrimSpace(c.TargetURL)
	if c.TargetURL == "" {
		c.TargetURL = defaultURL
	}
	return c
}

// Lines son hasta tres líneas; una línea vacía no se dibuja pero conserva su banda.
type Lines [3]string

// Line es una línea ya posicionada. Y es el borde superior del texto.
type Line struct {
	Index      int
	Text       string
	X          int
	Y          int
	FontSizePx int
}

// Layout es declarativo: posiciones y tamaños, sin pixeles.
type Layout struct {
	Variant   Variant
	Symbology Symbology
	Scale     int

	BarcodeSizePx int
	TotalWidthPx  int
	TotalHeightPx int

	// TextClamped: el texto medido no entraba en el ancho máximo.
	TextClamped bool

	Lines []Line
}
