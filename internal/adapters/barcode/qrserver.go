package barcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strconv"
	"strings"
	"time"

	"peptide-labels/internal/domain/labels"
	"peptide-labels/internal/platform/httpclient"
)

const DefaultQRServerURL = "https://api.qrserver.com/v1/create-qr-code"

var (
	ErrRemoteNotConfigured = errors.New("remote barcode api not configured")
	ErrRemoteImage         = errors.New("remote barcode api returned an unusable image")
)

type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
	Margin  int // px de zona blanca que agrega el servicio
}

// Remote pide el QR a una API tipo qrserver (?size=NxN&data=...).
// DataMatrix no está disponible ahí: se delega en DataMatrix si está seteado.
type Remote struct {
	cfg        RemoteConfig
	http       *httpclient.Client
	DataMatrix labels.BarcodeProvider
}

func NewRemote(cfg RemoteConfig) (*Remote, error) {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultQRServerURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	c, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Remote{cfg: cfg, http: c}, nil
}

func (r *Remote) IsConfigured() bool {
	return r != nil && r.http != nil && r.http.BaseURL != ""
}

func (r *Remote) RenderQR(ctx context.Context, text string, sizePx int) (image.Image, error) {
	if !r.IsConfigured() {
		return nil, ErrRemoteNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}
	if sizePx <= 0 {
		sizePx = 150
	}

	q := url.Values{}
	q.Set("size", fmt.Sprintf("%dx%d", sizePx, sizePx))
	q.Set("data", text)
	q.Set("format", "png")
	if r.cfg.Margin > 0 {
		q.Set("margin", strconv.Itoa(r.cfg.Margin))
	}

	raw, _, err := r.http.GetBytes(ctx, "/", q, map[string]string{"Accept": "image/png"})
	if err != nil {
		return nil, fmt.Errorf("qrserver: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteImage, err)
	}
	return img, nil
}

func (r *Remote) RenderDataMatrix(ctx context.Context, text string, sizePx int) (image.Image, error) {
	if r.DataMatrix == nil {
		return nil, labels.ErrUnsupportedSymbology
	}
	return r.DataMatrix.RenderDataMatrix(ctx, text, sizePx)
}
