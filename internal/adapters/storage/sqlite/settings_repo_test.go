package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepo_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)

	r := NewSettingsRepo(db)
	require.NoError(t, r.Set(ctx, "cli", "dose", "5"))
	require.NoError(t, r.Set(ctx, "cli", "dose", "2.5"))
	require.NoError(t, r.Set(ctx, "other", "units", "20"))
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	r = NewSettingsRepo(db)

	v, found, err := r.Get(ctx, "cli", "dose")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2.5", v)

	ns, err := r.Namespaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cli", "other"}, ns)

	require.NoError(t, r.RemoveAll(ctx, "cli", []string{"dose", "units"}))
	_, found, err = r.Get(ctx, "cli", "dose")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSettingsRepo_InMemory(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	r := NewSettingsRepo(db)
	_, found, err := r.Get(ctx, "cli", "dose")
	require.NoError(t, err)
	assert.False(t, found)

	assert.ErrorIs(t, r.Set(ctx, "", "dose", "1"), ErrNamespaceRequired)
	assert.NoError(t, r.RemoveAll(ctx, "cli", nil))
}
