package render

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image"
	"image/png"
	"io"

	"peptide-labels/internal/domain/labels"
)

// SVG emite el mismo layout como vector: el código va embebido como PNG
// (data URI) y el texto como <text>.
type SVG struct {
	FontFamily string
}

func NewSVG() *SVG {
	return &SVG{FontFamily: "Go Mono, monospace"}
}

func (s *SVG) Render(w io.Writer, l labels.Layout, barcode image.Image) error {
	if barcode == nil {
		return labels.ErrImageUnavailable
	}

	var raw bytes.Buffer
	if err := png.Encode(&raw, barcode); err != nil {
		return fmt.Errorf("encode barcode: %w", err)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		l.TotalWidthPx, l.TotalHeightPx, l.TotalWidthPx, l.TotalHeightPx,
	)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	fmt.Fprintf(&b,
		`<image x="0" y="0" width="%d" height="%d" style="image-rendering:pixelated" href="data:image/png;base64,%s"/>`+"\n",
		l.BarcodeSizePx, l.BarcodeSizePx, base64.StdEncoding.EncodeToString(raw.Bytes()),
	)

	for _, ln := range l.Lines {
		fmt.Fprintf(&b,
			`<text x="%d" y="%d" font-family="%s" font-size="%d" dominant-baseline="text-before-edge" fill="#000000">`,
			ln.X, ln.Y, s.fontFamily(), ln.FontSizePx,
		)
		if err := xml.EscapeText(&b, []byte(ln.Text)); err != nil {
			return err
		}
		b.WriteString("</text>\n")
	}
	b.WriteString("</svg>\n")

	_, err := w.Write(b.Bytes())
	return err
}

func (s *SVG) fontFamily() string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s.FontFamily))
	return b.String()
}
