package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"peptide-labels/internal/domain/labels"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// PNG dibuja el layout sobre fondo blanco.
type PNG struct {
	fonts *Fonts
}

func NewPNG(fonts *Fonts) *PNG {
	return &PNG{fonts: fonts}
}

func (p *PNG) Render(w io.Writer, l labels.Layout, barcode image.Image) error {
	img, err := p.Draw(l, barcode)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Draw arma la imagen sin codificar (tests / otros formatos).
func (p *PNG) Draw(l labels.Layout, barcode image.Image) (*image.RGBA, error) {
	if barcode == nil {
		return nil, labels.ErrImageUnavailable
	}
	if l.TotalWidthPx <= 0 || l.TotalHeightPx <= 0 {
		return nil, fmt.Errorf("%w: empty canvas", labels.ErrInvalidGeometry)
	}

	img := image.NewRGBA(image.Rect(0, 0, l.TotalWidthPx, l.TotalHeightPx))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	// vecino más cercano: los módulos del código quedan nítidos
	dst := image.Rect(0, 0, l.BarcodeSizePx, l.BarcodeSizePx)
	draw.NearestNeighbor.Scale(img, dst, barcode, barcode.Bounds(), draw.Over, nil)

	for _, ln := range l.Lines {
		if err := p.drawLine(img, ln); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func (p *PNG) drawLine(img *image.RGBA, ln labels.Line) error {
	face, err := p.fonts.Face(ln.FontSizePx)
	if err != nil {
		return err
	}

	p.fonts.mu.Lock()
	defer p.fonts.mu.Unlock()

	// Y es el borde superior de la línea; el Drawer usa baseline
	ascent := face.Metrics().Ascent
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(ln.X),
			Y: fixed.I(ln.Y) + ascent,
		},
	}
	d.DrawString(ln.Text)
	return nil
}
