package recalc

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"peptide-labels/internal/domain/labels"
	"peptide-labels/internal/domain/settings"
	"peptide-labels/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

var (
	ErrNoOutcome    = errors.New("no outcome published yet")
	ErrLabelMissing = errors.New("label not available")
)

// Shortener acorta URLs. nil en Deps = acortado deshabilitado.
type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

type Deps struct {
	Env       Env
	Settings  *settings.Service
	Shortener Shortener
	Log       logger.Logger
}

// Session es el estado de un cliente (una pestaña del navegador, la CLI).
type Session struct {
	id   string
	deps Deps
	log  logger.Logger
	gen  Generation

	// saveMu serializa los Save con el chequeo de generación
	saveMu sync.Mutex

	mu       sync.RWMutex
	latest   Outcome
	barcodes Barcodes
	ready    bool
}

func NewSession(id string, deps Deps) *Session {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		id:   id,
		deps: deps,
		log:  log.With(map[string]any{"client_id": id}),
	}
}

func (s *Session) ID() string { return s.id }

// Apply persiste el estado, resuelve la URL, obtiene los códigos y recalcula.
// published=false significa que otro Apply más nuevo empezó mientras tanto:
// el resultado se devuelve pero no reemplaza al publicado.
func (s *Session) Apply(ctx context.Context, st settings.State) (Outcome, bool, error) {
	token := s.gen.Next()
	env := s.deps.Env

	p := env.Catalog.Resolve(st.PeptideType)
	st.PeptideType = p.ID
	st = settings.Normalize(st, p)

	s.saveIfCurrent(ctx, token, st)

	st, shortErr := s.resolveShortURL(ctx, token, st)

	content := labels.Content{TargetURL: st.LabelURL()}.Normalize(env.Labels.Options().DefaultURL)
	barcodes, err := s.acquire(ctx, content.TargetURL)
	if err != nil {
		return Outcome{}, false, err
	}

	out := OnInputChanged(env, st, barcodes)
	out.Generation = token
	out.ShortURLError = shortErr

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.gen.IsCurrent(token) {
		s.log.Debug("stale recalculation dropped", map[string]any{
			"generation": token,
			"latest":     s.gen.Latest(),
		})
		return out, false, nil
	}
	s.latest = out
	s.barcodes = barcodes
	s.ready = true
	return out, true, nil
}

// resolveShortURL usa el corto guardado si corresponde a la URL actual;
// si no, pide uno nuevo. Un fallo deja la URL larga y un mensaje.
func (s *Session) resolveShortURL(ctx context.Context, token uint64, st settings.State) (settings.State, string) {
	if !st.UseShortURL {
		return st, ""
	}
	target := strings.TrimSpace(st.TargetURL)
	if target == "" {
		target = s.deps.Env.Labels.Options().DefaultURL
		st.TargetURL = target
	}
	if st.ShortURL != "" && st.ShortURLSource == target {
		return st, ""
	}
	if s.deps.Shortener == nil {
		return st, MsgShortenFailed
	}

	short, err := s.deps.Shortener.Shorten(ctx, target)
	if err != nil {
		s.log.Warn("shorten url failed", map[string]any{"url": target, "error": err})
		return st, MsgShortenFailed
	}

	st.ShortURL = short
	st.ShortURLSource = target

	s.saveIfCurrent(ctx, token, st)
	return st, ""
}

// saveIfCurrent persiste st salvo que un Apply más nuevo ya haya empezado.
// Chequeo y Save van bajo el mismo lock para no pisar un estado más nuevo.
func (s *Session) saveIfCurrent(ctx context.Context, token uint64, st settings.State) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if !s.gen.IsCurrent(token) {
		return
	}
	s.deps.Settings.Save(ctx, s.id, st)
}

// acquire pide los códigos de todas las simbologías en paralelo. Un
// proveedor caído no corta el resto; sólo la cancelación del ctx.
func (s *Session) acquire(ctx context.Context, text string) (Barcodes, error) {
	env := s.deps.Env
	size := env.Labels.BarcodeSize(labels.VariantReconstituted, 0)

	var mu sync.Mutex
	out := make(Barcodes)

	g, gctx := errgroup.WithContext(ctx)
	for _, sym := range env.symbologies() {
		g.Go(func() error {
			img, err := env.Labels.AcquireBarcode(gctx, sym, text, size)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Warn("barcode unavailable", map[string]any{"symbology": string(sym), "error": err})
				return nil
			}
			mu.Lock()
			out[sym] = img
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Current devuelve lo publicado; la primera vez carga lo persistido y recalcula.
func (s *Session) Current(ctx context.Context) (Outcome, error) {
	if out, ok := s.Snapshot(); ok {
		return out, nil
	}

	st, _ := s.deps.Settings.Load(ctx, s.id, s.deps.Env.Catalog)
	out, published, err := s.Apply(ctx, st)
	if err != nil {
		return Outcome{}, err
	}
	if !published {
		if latest, ok := s.Snapshot(); ok {
			return latest, nil
		}
	}
	return out, nil
}

func (s *Session) Snapshot() (Outcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.ready
}

// Reset borra lo persistido y recalcula con los defaults.
func (s *Session) Reset(ctx context.Context) (Outcome, error) {
	s.deps.Settings.Reset(ctx, s.id)

	st, _ := s.deps.Settings.Load(ctx, s.id, s.deps.Env.Catalog)
	out, _, err := s.Apply(ctx, st)
	return out, err
}

// Preview dibuja una etiqueta del último resultado publicado.
func (s *Session) Preview(w io.Writer, v labels.Variant, sym labels.Symbology, f labels.Format) error {
	s.mu.RLock()
	out, ready := s.latest, s.ready
	img := s.barcodes[sym]
	s.mu.RUnlock()

	if !ready {
		return ErrNoOutcome
	}
	lo, ok := out.Label(v, sym)
	if !ok {
		return ErrLabelMissing
	}
	if lo.Layout == nil {
		return labels.ErrImageUnavailable
	}
	return s.deps.Env.Labels.Draw(w, f, *lo.Layout, img)
}
