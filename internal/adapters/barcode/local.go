package barcode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/datamatrix"
	"github.com/boombuler/barcode/qr"
)

var (
	ErrEmptyContent = errors.New("barcode content required")
)

// Local codifica en proceso; no depende de red.
type Local struct {
	Level qr.ErrorCorrectionLevel
}

func NewLocal() *Local {
	return &Local{Level: qr.M}
}

func (l *Local) RenderQR(ctx context.Context, text string, sizePx int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	code, err := qr.Encode(text, l.Level, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return scale(code, sizePx), nil
}

func (l *Local) RenderDataMatrix(ctx context.Context, text string, sizePx int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	code, err := datamatrix.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("encode datamatrix: %w", err)
	}
	return scale(code, sizePx), nil
}

// scale agranda al tamaño pedido. Si el código tiene más módulos que
// píxeles se devuelve tal cual y el sink lo reescala al dibujar.
func scale(code bc.Barcode, sizePx int) image.Image {
	if sizePx <= 0 {
		return code
	}
	scaled, err := bc.Scale(code, sizePx, sizePx)
	if err != nil {
		return code
	}
	return scaled
}
