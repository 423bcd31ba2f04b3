package barcode

import (
	"context"
	"image"

	"peptide-labels/internal/domain/labels"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 256

type cacheKey struct {
	symbology labels.Symbology
	text      string
	sizePx    int
}

// Cached memoriza imágenes por (simbología, texto, tamaño). Los errores no
// se guardan: el próximo pedido vuelve a intentar.
// Las imágenes devueltas se comparten; los sinks sólo las leen.
type Cached struct {
	next  labels.BarcodeProvider
	cache *lru.Cache[cacheKey, image.Image]
}

func NewCached(next labels.BarcodeProvider, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[cacheKey, image.Image](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: c}, nil
}

func (c *Cached) RenderQR(ctx context.Context, text string, sizePx int) (image.Image, error) {
	return c.get(ctx, cacheKey{labels.SymbologyQR, text, sizePx}, c.next.RenderQR)
}

func (c *Cached) RenderDataMatrix(ctx context.Context, text string, sizePx int) (image.Image, error) {
	return c.get(ctx, cacheKey{labels.SymbologyDataMatrix, text, sizePx}, c.next.RenderDataMatrix)
}

func (c *Cached) Len() int {
	return c.cache.Len()
}

func (c *Cached) get(
	ctx context.Context,
	key cacheKey,
	render func(context.Context, string, int) (image.Image, error),
) (image.Image, error) {
	if img, ok := c.cache.Get(key); ok {
		return img, nil
	}
	img, err := render(ctx, key.text, key.sizePx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, img)
	return img, nil
}
