package recalc

import "sync/atomic"

// Generation reparte tokens crecientes. Sólo el último token emitido puede
// publicar; los recálculos viejos que terminan tarde se descartan.
type Generation struct {
	n atomic.Uint64
}

func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

func (g *Generation) Latest() uint64 {
	return g.n.Load()
}

func (g *Generation) IsCurrent(token uint64) bool {
	return token == g.n.Load()
}
