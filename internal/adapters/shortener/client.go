package shortener

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"peptide-labels/internal/platform/httpclient"

	"golang.org/x/sync/singleflight"
)

var (
	ErrShortenerNotConfigured = errors.New("url shortener not configured")
	ErrShortenerUpstream      = errors.New("url shortener upstream error")
	ErrInvalidURL             = errors.New("url must be absolute http(s)")
)

// Formatos de respuesta soportados.
const (
	FormatText = "text" // body = URL corta (tinyurl, is.gd format=simple)
	FormatJSON = "json" // {"shorturl": "..."} (is.gd format=json)
)

// Config del acortador.
// Endpoint típico: https://is.gd/create.php con Params{"format": "simple"}.
type Config struct {
	Endpoint string
	Format   string

	// URLParam es el nombre del query param con la URL larga. Default "url".
	URLParam string
	Params   map[string]string

	APIKey string
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	cfg  Config
	http *httpclient.Client
	sf   singleflight.Group
}

func NewClient(cfg Config) (*Client, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if cfg.Format == "" {
		cfg.Format = FormatText
	}
	if cfg.Format != FormatText && cfg.Format != FormatJSON {
		return nil, fmt.Errorf("shortener: unknown format %q", cfg.Format)
	}
	if strings.TrimSpace(cfg.URLParam) == "" {
		cfg.URLParam = "url"
	}
	if strings.TrimSpace(cfg.APIKeyHeader) == "" {
		cfg.APIKeyHeader = "X-Api-Key"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	hc := httpclient.New(cfg.Timeout)
	hc.UserAgent = "peptide-labels"
	return &Client{cfg: cfg, http: hc}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.cfg.Endpoint != ""
}

// Shorten devuelve la URL corta. Pedidos concurrentes de la misma URL
// comparten una sola llamada.
func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrShortenerNotConfigured
	}
	longURL = strings.TrimSpace(longURL)
	if !isHTTPURL(longURL) {
		return "", ErrInvalidURL
	}

	// la llamada compartida no depende del ctx de quien llegó primero;
	// cada llamador deja de esperar cuando se cancela el suyo
	ch := c.sf.DoChan(longURL, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Timeout)
		defer cancel()
		return c.shorten(sctx, longURL)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

func (c *Client) shorten(ctx context.Context, longURL string) (string, error) {
	q := url.Values{}
	for k, v := range c.cfg.Params {
		q.Set(k, v)
	}
	q.Set(c.cfg.URLParam, longURL)

	var headers map[string]string
	if c.cfg.APIKey != "" {
		headers = map[string]string{c.cfg.APIKeyHeader: c.cfg.APIKey}
	}

	var short string
	switch c.cfg.Format {
	case FormatJSON:
		var out struct {
			ShortURL     string `json:"shorturl"`
			ErrorMessage string `json:"errormessage"`
		}
		if err := c.http.DoJSON(ctx, http.MethodGet, c.cfg.Endpoint, q, headers, nil, &out); err != nil {
			return "", fmt.Errorf("%w: %v", ErrShortenerUpstream, err)
		}
		if out.ErrorMessage != "" {
			return "", fmt.Errorf("%w: %s", ErrShortenerUpstream, out.ErrorMessage)
		}
		short = out.ShortURL
	default:
		s, err := c.http.GetText(ctx, c.cfg.Endpoint, q, headers)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrShortenerUpstream, err)
		}
		short = s
	}

	short = strings.TrimSpace(short)
	if !isHTTPURL(short) {
		return "", fmt.Errorf("%w: unexpected response %q", ErrShortenerUpstream, truncate(short, 80))
	}
	return short, nil
}

func isHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
