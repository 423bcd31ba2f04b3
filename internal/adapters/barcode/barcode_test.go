package barcode

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"peptide-labels/internal/domain/labels"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_RendersRequestedSize(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	img, err := l.RenderQR(ctx, "https://example.test/a", 114)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 114, 114), img.Bounds())

	img, err = l.RenderDataMatrix(ctx, "https://example.test/a", 114)
	require.NoError(t, err)
	assert.Equal(t, 114, img.Bounds().Dx())

	// más chico que los módulos => tamaño nativo
	img, err = l.RenderQR(ctx, "https://example.test/a", 3)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 3)

	_, err = l.RenderQR(ctx, "  ", 114)
	assert.ErrorIs(t, err, ErrEmptyContent)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.RenderDataMatrix(cancelled, "x", 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocal_WorksWithAcquire(t *testing.T) {
	img, err := labels.Acquire(context.Background(), NewLocal(), labels.SymbologyDataMatrix, "Peptide", 38)
	require.NoError(t, err)
	assert.NotNil(t, img)
}

func pngBytes(t *testing.T, size int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, size, size))))
	return buf.Bytes()
}

func TestRemote_RenderQR(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/v1/create-qr-code/", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes(t, 150))
	}))
	defer srv.Close()

	r, err := NewRemote(RemoteConfig{BaseURL: srv.URL + "/v1/create-qr-code/"})
	require.NoError(t, err)
	assert.True(t, r.IsConfigured())

	img, err := r.RenderQR(context.Background(), "https://a.test/x?y=1&z=2", 150)
	require.NoError(t, err)
	assert.Equal(t, 150, img.Bounds().Dx())
	assert.Contains(t, gotQuery, "size=150x150")
	assert.Contains(t, gotQuery, "data=https%3A%2F%2Fa.test%2Fx%3Fy%3D1%26z%3D2")
}

func TestRemote_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("data") == "broken" {
			_, _ = w.Write([]byte("not an image"))
			return
		}
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r, err := NewRemote(RemoteConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = r.RenderQR(context.Background(), "x", 10)
	assert.Error(t, err)

	_, err = r.RenderQR(context.Background(), "broken", 10)
	assert.ErrorIs(t, err, ErrRemoteImage)

	_, err = r.RenderDataMatrix(context.Background(), "x", 10)
	assert.ErrorIs(t, err, labels.ErrUnsupportedSymbology)

	r.DataMatrix = NewLocal()
	img, err := r.RenderDataMatrix(context.Background(), "x", 40)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())

	var unconfigured *Remote
	_, err = unconfigured.RenderQR(context.Background(), "x", 10)
	assert.ErrorIs(t, err, ErrRemoteNotConfigured)
}

type countingProvider struct {
	calls int
	fail  bool
}

func (p *countingProvider) RenderQR(_ context.Context, _ string, size int) (image.Image, error) {
	p.calls++
	if p.fail {
		return nil, errors.New("offline")
	}
	return image.NewGray(image.Rect(0, 0, size, size)), nil
}

func (p *countingProvider) RenderDataMatrix(ctx context.Context, text string, size int) (image.Image, error) {
	return p.RenderQR(ctx, text, size)
}

func TestCached(t *testing.T) {
	next := &countingProvider{}
	c, err := NewCached(next, 2)
	require.NoError(t, err)
	ctx := context.Background()

	a, err := c.RenderQR(ctx, "u", 38)
	require.NoError(t, err)
	b, err := c.RenderQR(ctx, "u", 38)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, next.calls)

	// otra simbología / tamaño => otra entrada
	_, _ = c.RenderDataMatrix(ctx, "u", 38)
	_, _ = c.RenderQR(ctx, "u", 114)
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, 2, c.Len())

	next.fail = true
	_, err = c.RenderQR(ctx, "v", 38)
	assert.Error(t, err)
	_, err = c.RenderQR(ctx, "v", 38)
	assert.Error(t, err)
	assert.Equal(t, 5, next.calls)
}
