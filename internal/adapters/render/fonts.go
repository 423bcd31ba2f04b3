package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

// Fonts cachea faces de Go Mono por tamaño en px. Mide y dibuja con la
// misma face, así el ancho calculado es el que queda en el archivo.
type Fonts struct {
	mu    sync.Mutex
	font  *opentype.Font
	faces map[int]font.Face
}

func NewFonts() (*Fonts, error) {
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse go mono: %w", err)
	}
	return &Fonts{
		font:  f,
		faces: make(map[int]font.Face),
	}, nil
}

// MustFonts para wiring en main/tests; la fuente es embebida.
func MustFonts() *Fonts {
	f, err := NewFonts()
	if err != nil {
		panic(err)
	}
	return f
}

// Face devuelve la face para sizePx (DPI 72 => 1pt = 1px).
func (f *Fonts) Face(sizePx int) (font.Face, error) {
	if sizePx <= 0 {
		return nil, fmt.Errorf("font size must be > 0, got %d", sizePx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if face, ok := f.faces[sizePx]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	f.faces[sizePx] = face
	return face, nil
}

// Measure implementa labels.TextMeasurer.
func (f *Fonts) Measure(text string, sizePx int) float64 {
	if text == "" || sizePx <= 0 {
		return 0
	}
	face, err := f.Face(sizePx)
	if err != nil {
		return 0
	}

	// font.Face no es seguro para uso concurrente
	f.mu.Lock()
	adv := font.MeasureString(face, text)
	f.mu.Unlock()

	return float64(adv) / 64
}

func (f *Fonts) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for size, face := range f.faces {
		_ = face.Close()
		delete(f.faces, size)
	}
	return nil
}
