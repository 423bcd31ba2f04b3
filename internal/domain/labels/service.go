package labels

import (
	"context"
	"fmt"
	"image"
	"io"

	"peptide-labels/internal/domain/dosing"
)

// Options de la etiqueta; vienen de la config y no cambian en runtime.
type Options struct {
	DefaultURL  string
	ScreenScale int // preview (3)
	PrintScale  int // export de alta resolución (9)

	// HeightMm / MaxWidthMm: 0 = usar los de GeometryFor.
	HeightMm   float64
	MaxWidthMm float64
}

type Service struct {
	provider BarcodeProvider
	measurer TextMeasurer
	sinks    map[Format]Sink
	opts     Options
}

func NewService(provider BarcodeProvider, measurer TextMeasurer, sinks map[Format]Sink, opts Options) *Service {
	if opts.ScreenScale < 1 {
		opts.ScreenScale = 3
	}
	if opts.PrintScale < 1 {
		opts.PrintScale = 9
	}
	return &Service{
		provider: provider,
		measurer: measurer,
		sinks:    sinks,
		opts:     opts,
	}
}

func (s *Service) Options() Options { return s.opts }

func (s *Service) Measurer() TextMeasurer { return s.measurer }

func (s *Service) Geometry(v Variant) Geometry {
	g := GeometryFor(v)
	if s.opts.HeightMm > 0 {
		g.HeightMm = s.opts.HeightMm
	}
	if s.opts.MaxWidthMm > 0 {
		g.MaxWidthMm = s.opts.MaxWidthMm
	}
	return g
}

// BuildInput es todo lo necesario para una etiqueta.
type BuildInput struct {
	Content   Content
	Variant   Variant
	Symbology Symbology
	Scale     int // 0 = ScreenScale

	Dose   dosing.Inputs
	Result dosing.Result
}

type Built struct {
	Content Content
	Layout  Layout
	Barcode image.Image
}

func (s *Service) normalize(in BuildInput) BuildInput {
	in.Content = in.Content.Normalize(s.opts.DefaultURL)
	if in.Scale == 0 {
		in.Scale = s.opts.ScreenScale
	}
	if in.Variant == "" {
		in.Variant = VariantReconstituted
	}
	if in.Symbology == "" {
		in.Symbology = SymbologyQR
	}
	return in
}

// BarcodeSize es el lado (px) que hay que pedirle al proveedor.
func (s *Service) BarcodeSize(v Variant, scale int) int {
	if scale == 0 {
		scale = s.opts.ScreenScale
	}
	return s.Geometry(v).BarcodeSizePx(scale)
}

// AcquireBarcode pide el código al proveedor. Cualquier falla sale como ErrImageUnavailable.
func (s *Service) AcquireBarcode(ctx context.Context, sym Symbology, text string, sizePx int) (image.Image, error) {
	img, err := Acquire(ctx, s.provider, sym, text, sizePx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}
	return img, nil
}

// Layout no hace I/O: arma las líneas y llama a Compose con la imagen ya obtenida.
func (s *Service) Layout(img image.Image, in BuildInput) (Layout, error) {
	in = s.normalize(in)
	lines := BuildLines(in.Variant, in.Content, in.Dose, in.Result)

	l, err := Compose(img, lines, s.Geometry(in.Variant), in.Scale, s.measurer)
	if err != nil {
		return Layout{}, err
	}
	l.Variant = in.Variant
	l.Symbology = in.Symbology
	return l, nil
}

// Build obtiene el código y compone. Si el código falla no se intenta el layout.
func (s *Service) Build(ctx context.Context, in BuildInput) (Built, error) {
	in = s.normalize(in)
	if in.Scale < 1 {
		return Built{}, ErrInvalidScale
	}

	size := s.Geometry(in.Variant).BarcodeSizePx(in.Scale)
	img, err := s.AcquireBarcode(ctx, in.Symbology, in.Content.TargetURL, size)
	if err != nil {
		return Built{}, err
	}

	l, err := s.Layout(img, in)
	if err != nil {
		return Built{}, err
	}
	return Built{Content: in.Content, Layout: l, Barcode: img}, nil
}

// Export compone y escribe el archivo (PNG o SVG). Scale 0 = PrintScale.
func (s *Service) Export(ctx context.Context, in BuildInput, f Format, w io.Writer) (Layout, error) {
	sink, ok := s.sinks[f]
	if !ok || sink == nil {
		return Layout{}, ErrUnsupportedFormat
	}
	if in.Scale == 0 {
		in.Scale = s.opts.PrintScale
	}

	b, err := s.Build(ctx, in)
	if err != nil {
		return Layout{}, err
	}
	if err := sink.Render(w, b.Layout, b.Barcode); err != nil {
		return Layout{}, fmt.Errorf("render %s: %w", f, err)
	}
	return b.Layout, nil
}

// Draw dibuja un layout ya calculado (preview de sesión).
func (s *Service) Draw(w io.Writer, f Format, l Layout, img image.Image) error {
	sink, ok := s.sinks[f]
	if !ok || sink == nil {
		return ErrUnsupportedFormat
	}
	if img == nil {
		return ErrImageUnavailable
	}
	return sink.Render(w, l, img)
}
