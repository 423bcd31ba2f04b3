package settings

import "context"

// Repository persiste pares clave/valor por namespace.
// Get con found=false y err=nil significa "nunca guardado".
type Repository interface {
	Get(ctx context.Context, namespace, key string) (value string, found bool, err error)
	Set(ctx context.Context, namespace, key, value string) error
	RemoveAll(ctx context.Context, namespace string, keys []string) error
}
