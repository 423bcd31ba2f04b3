package labels

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	ErrImageUnavailable = errors.New("barcode image unavailable")
	ErrInvalidScale     = errors.New("scale must be an integer >= 1")
	ErrInvalidGeometry  = errors.New("invalid label geometry")
)

const mmPerInch = 25.4

// TextMeasurer mide el ancho (px) de un texto con la misma fuente que se usa al dibujar.
type TextMeasurer interface {
	Measure(text string, sizePx int) float64
}

// Geometry es la configuración física de la etiqueta.
type Geometry struct {
	HeightMm   float64
	MaxWidthMm float64
	DPI        float64

	// FontRatio (k): fontSize = floor(base/3*k).
	FontRatio float64
	// MiddleLineRatio achica la línea 2 (0.7 = 30% más chica). 0 o 1 = sin cambio.
	MiddleLineRatio float64

	GapPx         float64 // entre código y texto
	RightMarginPx float64
}

// GeometryFor devuelve la geometría estándar (10mm x hasta 50mm) para la variante.
func GeometryFor(v Variant) Geometry {
	g := Geometry{
		HeightMm:      10,
		MaxWidthMm:    50,
		DPI:           96,
		GapPx:         5,
		RightMarginPx: 10,
	}
	switch v {
	case VariantUnreconstituted:
		g.FontRatio = 1.0
		g.MiddleLineRatio = 1
	default:
		g.FontRatio = 0.9
		g.MiddleLineRatio = 0.7
	}
	return g
}

func (g Geometry) validate() error {
	if g.HeightMm <= 0 || g.MaxWidthMm <= 0 || g.DPI <= 0 || g.FontRatio <= 0 {
		return ErrInvalidGeometry
	}
	if g.GapPx < 0 || g.RightMarginPx < 0 || g.MiddleLineRatio < 0 {
		return ErrInvalidGeometry
	}
	return nil
}

// BasePx es la altura a 1x (= lado del código).
func (g Geometry) BasePx() int {
	return int(math.Round(g.HeightMm / mmPerInch * g.DPI))
}

// MaxWidthPx a 1x, sin redondear.
func (g Geometry) MaxWidthPx() float64 {
	return g.MaxWidthMm / mmPerInch * g.DPI
}

// BarcodeSizePx es el tamaño a pedirle al proveedor para una escala dada.
func (g Geometry) BarcodeSizePx(scale int) int {
	return g.BasePx() * scale
}

// FontSizes devuelve los tamaños base (1x) de las tres líneas.
func (g Geometry) FontSizes() [3]int {
	base := g.BasePx()
	size := int(math.Floor(float64(base) / 3 * g.FontRatio))
	middle := size
	if g.MiddleLineRatio > 0 && g.MiddleLineRatio < 1 {
		middle = int(math.Floor(float64(size) * g.MiddleLineRatio))
	}
	return [3]int{size, middle, size}
}

// Compose ubica el código y las líneas de texto. Es puro: mismas entradas, mismo Layout.
//
// Todo se cuantiza a 1x y después se multiplica por scale, así que la escala solo
// cambia la resolución, nunca las proporciones.
func Compose(img image.Image, lines Lines, g Geometry, scale int, m TextMeasurer) (Layout, error) {
	if img == nil {
		return Layout{}, ErrImageUnavailable
	}
	if scale < 1 {
		return Layout{}, ErrInvalidScale
	}
	if err := g.validate(); err != nil {
		return Layout{}, err
	}
	if m == nil {
		return Layout{}, fmt.Errorf("%w: nil text measurer", ErrInvalidGeometry)
	}

	base := g.BasePx()
	sizes := g.FontSizes()
	if base <= 0 || sizes[0] <= 0 || sizes[1] <= 0 {
		return Layout{}, fmt.Errorf("%w: label too small for text", ErrInvalidGeometry)
	}

	barcode := float64(base)

	// todas las líneas se miden al tamaño base, también la del medio
	maxText := 0.0
	for _, text := range lines {
		if text == "" {
			continue
		}
		if w := m.Measure(text, sizes[0]); w > maxText {
			maxText = w
		}
	}

	available := g.MaxWidthPx() - barcode - (g.GapPx + g.RightMarginPx)
	if available < 0 {
		available = 0
	}
	textWidth := math.Min(maxText, available)

	width := int(math.Floor(barcode + g.GapPx + textWidth + g.RightMarginPx))
	x := int(math.Floor(barcode + g.GapPx))

	// tres bandas iguales, corridas media banda hacia arriba
	centerY := float64(base) / 2
	spacing := float64(base) / 3
	half := math.Floor(spacing / 2)
	ys := [3]float64{
		centerY - spacing - half,
		centerY - half,
		centerY + spacing - half,
	}

	out := Layout{
		Scale:         scale,
		BarcodeSizePx: base * scale,
		TotalWidthPx:  width * scale,
		TotalHeightPx: base * scale,
		TextClamped:   maxText > available,
		Lines:         make([]Line, 0, len(lines)),
	}

	for i, text := range lines {
		if text == "" {
			continue
		}
		y := int(math.Floor(ys[i]))
		if y < 0 {
			y = 0
		}
		out.Lines = append(out.Lines, Line{
			Index:      i,
			Text:       text,
			X:          x * scale,
			Y:          y * scale,
			FontSizePx: sizes[i] * scale,
		})
	}

	return out, nil
}
