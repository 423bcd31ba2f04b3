package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"peptide-labels/internal/domain/settings"
)

var (
	ErrNamespaceRequired = errors.New("namespace required")
)

type settingsRepo struct {
	mu   sync.RWMutex
	byNS map[string]map[string]string
}

func NewSettingsRepo() settings.Repository {
	return &settingsRepo{
		byNS: make(map[string]map[string]string),
	}
}

func (r *settingsRepo) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if strings.TrimSpace(namespace) == "" {
		return "", false, ErrNamespaceRequired
	}
	v, ok := r.byNS[namespace][key]
	return v, ok, nil
}

func (r *settingsRepo) Set(ctx context.Context, namespace, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(namespace) == "" {
		return ErrNamespaceRequired
	}
	ns, ok := r.byNS[namespace]
	if !ok {
		ns = make(map[string]string)
		r.byNS[namespace] = ns
	}
	ns[key] = value
	return nil
}

func (r *settingsRepo) RemoveAll(ctx context.Context, namespace string, keys []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.byNS[namespace]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(ns, k)
	}
	if len(ns) == 0 {
		delete(r.byNS, namespace)
	}
	return nil
}
