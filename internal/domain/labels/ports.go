package labels

import (
	"context"
	"errors"
	"image"
	"io"
	"strings"
)

var (
	ErrUnsupportedSymbology = errors.New("unsupported symbology")
	ErrUnsupportedFormat    = errors.New("unsupported export format")
)

// BarcodeProvider genera (o descarga) la imagen del código. Puede fallar.
type BarcodeProvider interface {
	RenderQR(ctx context.Context, text string, sizePx int) (image.Image, error)
	RenderDataMatrix(ctx context.Context, text string, sizePx int) (image.Image, error)
}

// Acquire pide el código según la simbología.
func Acquire(ctx context.Context, p BarcodeProvider, sym Symbology, text string, sizePx int) (image.Image, error) {
	if p == nil {
		return nil, ErrImageUnavailable
	}
	switch sym {
	case SymbologyQR:
		return p.RenderQR(ctx, text, sizePx)
	case SymbologyDataMatrix:
		return p.RenderDataMatrix(ctx, text, sizePx)
	default:
		return nil, ErrUnsupportedSymbology
	}
}

// Format de exportación.
// @Enum png, svg
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPNG:
		return FormatPNG, true
	case FormatSVG:
		return FormatSVG, true
	default:
		return "", false
	}
}

func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Sink dibuja un Layout con la imagen del código y escribe el archivo.
type Sink interface {
	Render(w io.Writer, l Layout, barcode image.Image) error
}
