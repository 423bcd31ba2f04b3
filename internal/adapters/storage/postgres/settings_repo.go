package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

var (
	ErrNamespaceRequired = errors.New("namespace required")
)

type SettingsRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db, now: time.Now}
}

func (r *SettingsRepo) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	if strings.TrimSpace(namespace) == "" {
		return "", false, ErrNamespaceRequired
	}

	var v string
	err := r.db.QueryRowContext(ctx, `
		SELECT value
		FROM settings
		WHERE namespace = $1 AND key = $2
	`, namespace, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *SettingsRepo) Set(ctx context.Context, namespace, key, value string) error {
	if strings.TrimSpace(namespace) == "" {
		return ErrNamespaceRequired
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`,
		namespace,
		key,
		value,
		r.now().UTC(),
	)
	return err
}

func (r *SettingsRepo) RemoveAll(ctx context.Context, namespace string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM settings
		WHERE namespace = $1 AND key = ANY($2)
	`, namespace, keys)
	return err
}
