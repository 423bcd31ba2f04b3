package recalc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"testing"
	"time"

	"peptide-labels/internal/adapters/storage/memory"
	"peptide-labels/internal/domain/dosing"
	"peptide-labels/internal/domain/labels"
	"peptide-labels/internal/domain/profiles"
	"peptide-labels/internal/domain/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// -------------------------
// Fakes
// -------------------------

type halfEm struct{}

func (halfEm) Measure(text string, sizePx int) float64 {
	return float64(len([]rune(text))*sizePx) / 2
}

type fakeProvider struct {
	mu    sync.Mutex
	calls []string
	dmErr error
}

func (p *fakeProvider) RenderQR(_ context.Context, text string, size int) (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf("qr:%d:%s", size, text))
	return image.NewGray(image.Rect(0, 0, size, size)), nil
}

func (p *fakeProvider) RenderDataMatrix(ctx context.Context, text string, size int) (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf("dm:%d:%s", size, text))
	if p.dmErr != nil {
		return nil, p.dmErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return image.NewGray(image.Rect(0, 0, size, size)), nil
}

type fakeShortener struct {
	mu    sync.Mutex
	calls int
	err   error
	gate  chan struct{} // si no es nil, Shorten espera
}

func (s *fakeShortener) Shorten(ctx context.Context, longURL string) (string, error) {
	s.mu.Lock()
	s.calls++
	gate, err := s.gate, s.err
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "https://is.gd/" + fmt.Sprint(len(longURL)), nil
}

type recordingSink struct{ got labels.Layout }

func (s *recordingSink) Render(w io.Writer, l labels.Layout, _ image.Image) error {
	s.got = l
	_, err := w.Write([]byte("img"))
	return err
}

type fixture struct {
	env      Env
	provider *fakeProvider
	sink     *recordingSink
	repo     settings.Repository
	deps     Deps
}

func newFixture(short Shortener) *fixture {
	p := &fakeProvider{}
	sink := &recordingSink{}
	env := Env{
		Dosing:  dosing.DefaultConfig(),
		Catalog: profiles.DefaultCatalog(),
		Labels: labels.NewService(p, halfEm{}, map[labels.Format]labels.Sink{labels.FormatPNG: sink}, labels.Options{
			DefaultURL: "https://default.test",
		}),
	}
	repo := memory.NewSettingsRepo()
	return &fixture{
		env:      env,
		provider: p,
		sink:     sink,
		repo:     repo,
		deps: Deps{
			Env:       env,
			Settings:  settings.NewServiceWithClock(repo, nil, testToday),
			Shortener: short,
		},
	}
}

var testToday = func() time.Time { return time.Date(2026, 2, 1, 9, 0, 0, 0, time.Local) }

func genericState() settings.State {
	return settings.Defaults(profiles.DefaultCatalog().Resolve(""), testToday())
}

// -------------------------
// OnInputChanged
// -------------------------

func TestOnInputChanged_ComputesEveryLabel(t *testing.T) {
	f := newFixture(nil)
	st := genericState()
	st.LabelText = "Tirz"
	st.LabelDate = "2026-02-01"

	qr := image.NewGray(image.Rect(0, 0, 114, 114))
	out := OnInputChanged(f.env, st, Barcodes{labels.SymbologyQR: qr})

	require.True(t, out.Valid)
	assert.InDelta(t, 20.0, out.Result.ConcentrationMgPerMl, 1e-9)
	assert.Equal(t, "https://default.test", out.URL)
	require.Len(t, out.Labels, 4)

	rec, ok := out.Label(labels.VariantReconstituted, labels.SymbologyQR)
	require.True(t, ok)
	require.NotNil(t, rec.Layout)
	assert.True(t, rec.Selected)
	assert.Equal(t, "20 mg/ml|020126", rec.Layout.Lines[1].Text)
	assert.Equal(t, 3, rec.Layout.Scale)

	dm, ok := out.Label(labels.VariantUnreconstituted, labels.SymbologyDataMatrix)
	require.True(t, ok)
	assert.Nil(t, dm.Layout)
	assert.False(t, dm.Selected)
	assert.Equal(t, MsgImageUnavailable, dm.Error)

	// no hizo I/O
	assert.Empty(t, f.provider.calls)
}

func TestOnInputChanged_InvalidInputKeepsPlaceholders(t *testing.T) {
	f := newFixture(nil)
	st := genericState()
	st.Dose = settings.CustomValue
	st.DoseCustom = "abc"

	qr := image.NewGray(image.Rect(0, 0, 114, 114))
	out := OnInputChanged(f.env, st, Barcodes{labels.SymbologyQR: qr})

	assert.False(t, out.Valid)
	assert.Equal(t, dosing.NoResult.DosesPerVial, out.Result.DosesPerVial)

	rec, _ := out.Label(labels.VariantReconstituted, labels.SymbologyQR)
	require.NotNil(t, rec.Layout)
	assert.Equal(t, "- mg/ml", rec.Layout.Lines[1].Text)
}

// -------------------------
// Session
// -------------------------

func TestSession_ApplyPersistsAndPublishes(t *testing.T) {
	f := newFixture(nil)
	s := NewSession("c1", f.deps)

	_, ok := s.Snapshot()
	assert.False(t, ok)

	st := genericState()
	st.TargetURL = "https://example.test/vial"
	st.Symbology = "datamatrix"

	out, published, err := s.Apply(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, published)
	assert.Equal(t, uint64(1), out.Generation)
	assert.Equal(t, "https://example.test/vial", out.URL)
	assert.ElementsMatch(t, []string{
		"qr:114:https://example.test/vial",
		"dm:114:https://example.test/vial",
	}, f.provider.calls)

	snap, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, out.Generation, snap.Generation)

	v, found, err := f.repo.Get(context.Background(), "c1", settings.KeyTargetURL)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://example.test/vial", v)
}

func TestSession_ShortURLIsCachedByOriginal(t *testing.T) {
	short := &fakeShortener{}
	f := newFixture(short)
	s := NewSession("c1", f.deps)
	ctx := context.Background()

	st := genericState()
	st.TargetURL = "https://example.test/long"
	st.UseShortURL = true

	out, _, err := s.Apply(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, "https://is.gd/25", out.URL)
	assert.Equal(t, "https://example.test/long", out.State.ShortURLSource)
	assert.Empty(t, out.ShortURLError)

	// mismo original => no se vuelve a pedir
	out, _, err = s.Apply(ctx, out.State)
	require.NoError(t, err)
	assert.Equal(t, 1, short.calls)
	assert.Equal(t, "https://is.gd/25", out.URL)

	// el corto quedó guardado
	v, _, _ := f.repo.Get(ctx, "c1", settings.KeyShortURL)
	assert.Equal(t, "https://is.gd/25", v)

	// URL nueva => corto nuevo
	next := out.State
	next.TargetURL = "https://example.test/other-url"
	out, _, err = s.Apply(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, 2, short.calls)
	assert.Equal(t, "https://is.gd/30", out.URL)
}

func TestSession_ShortenFailureFallsBackToLongURL(t *testing.T) {
	f := newFixture(&fakeShortener{err: errors.New("rate limited")})
	s := NewSession("c1", f.deps)

	st := genericState()
	st.TargetURL = "https://example.test/long"
	st.UseShortURL = true

	out, published, err := s.Apply(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, published)
	assert.Equal(t, MsgShortenFailed, out.ShortURLError)
	assert.Equal(t, "https://example.test/long", out.URL)

	// sin acortador configurado
	f = newFixture(nil)
	out, _, err = NewSession("c2", f.deps).Apply(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, MsgShortenFailed, out.ShortURLError)
}

func TestSession_BarcodeFailureOnlyAffectsThatLabel(t *testing.T) {
	f := newFixture(nil)
	f.provider.dmErr = errors.New("encoder down")
	s := NewSession("c1", f.deps)

	out, _, err := s.Apply(context.Background(), genericState())
	require.NoError(t, err)
	assert.True(t, out.Valid)

	for _, l := range out.Labels {
		if l.Symbology == labels.SymbologyDataMatrix {
			assert.Equal(t, MsgImageUnavailable, l.Error)
			continue
		}
		assert.NotNil(t, l.Layout)
	}
}

func TestSession_StaleApplyIsDropped(t *testing.T) {
	gate := make(chan struct{})
	short := &fakeShortener{gate: gate}
	f := newFixture(short)
	s := NewSession("c1", f.deps)
	ctx := context.Background()

	slow := genericState()
	slow.TargetURL = "https://example.test/slow"
	slow.UseShortURL = true
	slow.LabelText = "old"

	type result struct {
		out       Outcome
		published bool
		err       error
	}
	done := make(chan result, 1)
	go func() {
		out, published, err := s.Apply(ctx, slow)
		done <- result{out, published, err}
	}()

	// esperar a que el primero esté bloqueado en el acortador
	require.Eventually(t, func() bool {
		short.mu.Lock()
		defer short.mu.Unlock()
		return short.calls == 1
	}, time.Second, 5*time.Millisecond)

	fast := genericState()
	fast.LabelText = "new"
	out, published, err := s.Apply(ctx, fast)
	require.NoError(t, err)
	assert.True(t, published)

	close(gate)
	r := <-done
	require.NoError(t, r.err)
	assert.False(t, r.published)
	assert.Less(t, r.out.Generation, out.Generation)

	snap, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "new", snap.State.LabelText)

	// el corto del Apply viejo no pisa lo guardado por el nuevo
	v, _, _ := f.repo.Get(ctx, "c1", settings.KeyLabelText)
	assert.Equal(t, "new", v)
}

// heldRepo frena el primer Set de un corto no vacío hasta que se cierre release.
type heldRepo struct {
	settings.Repository
	once    sync.Once
	held    chan struct{}
	release chan struct{}
}

func (r *heldRepo) Set(ctx context.Context, namespace, key, value string) error {
	if key == settings.KeyShortURL && value != "" {
		r.once.Do(func() {
			close(r.held)
			<-r.release
		})
	}
	return r.Repository.Set(ctx, namespace, key, value)
}

func TestSession_ShortURLSaveDoesNotOverwriteNewerApply(t *testing.T) {
	f := newFixture(&fakeShortener{})
	repo := &heldRepo{Repository: f.repo, held: make(chan struct{}), release: make(chan struct{})}
	f.deps.Settings = settings.NewServiceWithClock(repo, nil, testToday)
	s := NewSession("c1", f.deps)
	ctx := context.Background()

	old := genericState()
	old.TargetURL = "https://example.test/old"
	old.UseShortURL = true
	old.LabelText = "old"

	oldDone := make(chan error, 1)
	go func() {
		_, _, err := s.Apply(ctx, old)
		oldDone <- err
	}()
	<-repo.held

	fresh := genericState()
	fresh.LabelText = "new"
	newDone := make(chan error, 1)
	go func() {
		_, _, err := s.Apply(ctx, fresh)
		newDone <- err
	}()

	// el Apply nuevo espera a que termine el guardado en curso
	require.Eventually(t, func() bool { return s.gen.Latest() == 2 }, time.Second, time.Millisecond)
	require.Never(t, func() bool { return len(newDone) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	close(repo.release)
	require.NoError(t, <-oldDone)
	require.NoError(t, <-newDone)

	text, _, _ := f.repo.Get(ctx, "c1", settings.KeyLabelText)
	short, _, _ := f.repo.Get(ctx, "c1", settings.KeyShortURL)
	assert.Equal(t, "new", text)
	assert.Equal(t, "", short)
}

func TestSession_CurrentLoadsStoredState(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	st := genericState()
	st.LabelText = "Stored"
	f.deps.Settings.Save(ctx, "c1", st)

	s := NewSession("c1", f.deps)
	out, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Stored", out.State.LabelText)

	again, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, out.Generation, again.Generation)
}

func TestSession_Reset(t *testing.T) {
	f := newFixture(nil)
	s := NewSession("c1", f.deps)
	ctx := context.Background()

	st := genericState()
	st.PeptideType = "semaglutide"
	st.LabelText = "Sema"
	_, _, err := s.Apply(ctx, st)
	require.NoError(t, err)

	out, err := s.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, profiles.GenericID, out.Profile.ID)
	assert.Equal(t, "", out.State.LabelText)
	assert.Equal(t, "30", out.State.VialQuantity)
	assert.Equal(t, "2026-02-01", out.State.LabelDate)
}

func TestSession_FreshClientLabelIsDatedToday(t *testing.T) {
	f := newFixture(nil)
	out, err := NewSession("new", f.deps).Current(context.Background())
	require.NoError(t, err)

	rec, ok := out.Label(labels.VariantReconstituted, labels.SymbologyQR)
	require.True(t, ok)
	require.NotNil(t, rec.Layout)
	assert.Equal(t, "20 mg/ml|020126", rec.Layout.Lines[1].Text)
}

func TestSession_Preview(t *testing.T) {
	f := newFixture(nil)
	s := NewSession("c1", f.deps)

	var buf bytes.Buffer
	err := s.Preview(&buf, labels.VariantReconstituted, labels.SymbologyQR, labels.FormatPNG)
	assert.ErrorIs(t, err, ErrNoOutcome)

	out, _, err := s.Apply(context.Background(), genericState())
	require.NoError(t, err)

	require.NoError(t, s.Preview(&buf, labels.VariantUnreconstituted, labels.SymbologyQR, labels.FormatPNG))
	assert.Equal(t, "img", buf.String())

	want, _ := out.Label(labels.VariantUnreconstituted, labels.SymbologyQR)
	assert.Equal(t, *want.Layout, f.sink.got)

	err = s.Preview(&buf, labels.VariantReconstituted, labels.SymbologyQR, labels.FormatSVG)
	assert.ErrorIs(t, err, labels.ErrUnsupportedFormat)
}

func TestSession_CancelledContext(t *testing.T) {
	f := newFixture(nil)
	s := NewSession("c1", f.deps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, published, err := s.Apply(ctx, genericState())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, published)
}

// -------------------------
// Manager / Generation
// -------------------------

func TestManager(t *testing.T) {
	f := newFixture(nil)
	m, err := NewManager(f.deps, 2)
	require.NoError(t, err)

	a, err := m.Session("c1")
	require.NoError(t, err)
	b, err := m.Session(" c1 ")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, "c1", a.ID())

	_, _ = m.Session("c2")
	_, _ = m.Session("c3")
	assert.Equal(t, 2, m.Len())

	_, err = m.Session("")
	assert.ErrorIs(t, err, ErrClientIDRequired)
}

func TestGeneration(t *testing.T) {
	var g Generation
	a := g.Next()
	b := g.Next()
	assert.Less(t, a, b)
	assert.False(t, g.IsCurrent(a))
	assert.True(t, g.IsCurrent(b))
	assert.Equal(t, b, g.Latest())
}
