package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNamespaceRequired = errors.New("namespace required")
)

// SettingsRepo guarda el formulario de la CLI entre ejecuciones.
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
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&v)
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
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
		namespace,
		key,
		value,
		r.now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (r *SettingsRepo) RemoveAll(ctx context.Context, namespace string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM settings WHERE namespace = ? AND key = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, k := range keys {
		if _, err := stmt.ExecContext(ctx, namespace, k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// Namespaces lista los namespaces con datos (CLI: settings clients).
func (r *SettingsRepo) Namespaces(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT namespace FROM settings ORDER BY namespace`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}
