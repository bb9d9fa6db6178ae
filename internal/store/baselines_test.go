package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/warndiff/internal/warning"
)

func makeWarnings() []warning.Warning {
	return []warning.Warning{
		{
			Path:         "src/net/conn.c",
			Line:         88,
			Column:       14,
			Message:      "comparison of integers of different signs [-Wsign-compare]",
			Continuation: []string{"   88 |   for (i = 0; i < n; i++)", "      |               ^"},
		},
		{Path: "src/util.c", Line: 4, Column: 1, Message: "unused function 'helper'"},
	}
}

func TestBaselineRepo_SaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBaselineRepo(db)
	ctx := context.Background()

	ws := makeWarnings()
	err := repo.Save(ctx, Baseline{Name: "main", Source: "build/main.log", Commit: "abc123", Warnings: ws})
	require.NoError(t, err)

	got, err := repo.Load(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "main", got.Name)
	assert.Equal(t, "build/main.log", got.Source)
	assert.Equal(t, "abc123", got.Commit)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, ws, got.Warnings)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestBaselineRepo_SaveReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBaselineRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, Baseline{Name: "main", Warnings: makeWarnings()}))
	require.NoError(t, repo.Save(ctx, Baseline{Name: "main", Source: "second.log", Warnings: makeWarnings()[:1]}))

	got, err := repo.Load(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "second.log", got.Source)
	assert.Equal(t, 1, got.Count)
	assert.Len(t, got.Warnings, 1)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBaselineRepo_SaveEmptyWarnings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBaselineRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, Baseline{Name: "clean"}))

	got, err := repo.Load(ctx, "clean")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count)
	assert.Empty(t, got.Warnings)
}

func TestBaselineRepo_SaveRequiresName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBaselineRepo(db)

	err := repo.Save(context.Background(), Baseline{Warnings: makeWarnings()})
	assert.Error(t, err)
}

func TestBaselineRepo_LoadMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBaselineRepo(db)

	got, err := repo.Load(context.Background(), "nope")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBaselineRepo_ListOmitsWarnings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBaselineRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, Baseline{Name: "a", Warnings: makeWarnings()}))
	require.NoError(t, repo.Save(ctx, Baseline{Name: "b", Warnings: makeWarnings()[:1]}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	counts := map[string]int{}
	for _, b := range list {
		assert.Nil(t, b.Warnings)
		counts[b.Name] = b.Count
	}
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, counts)
}

func TestBaselineRepo_ListEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBaselineRepo(db)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBaselineRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBaselineRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, Baseline{Name: "main", Warnings: makeWarnings()}))
	require.NoError(t, repo.Delete(ctx, "main"))

	_, err := repo.Load(ctx, "main")
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Delete(ctx, "main")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "baselines.db")

	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.Equal(t, path, db.Path())

	repo := NewBaselineRepo(db)
	require.NoError(t, repo.Save(context.Background(), Baseline{Name: "x", Warnings: makeWarnings()}))

	// Reopening runs migrations again without error.
	require.NoError(t, RunMigrations(db.Writer))
}
