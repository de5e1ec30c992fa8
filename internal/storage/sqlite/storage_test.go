package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aarambhveda/counselor/internal/catalog"
	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "counselor.db"), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCatalogSeedAndLoad(t *testing.T) {
	db := openTestDB(t)
	store, err := NewCatalogStorage(db, logger.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	n, err := store.CountColleges(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	colleges := catalog.DefaultColleges()
	categories := catalog.DefaultCourseCategories()
	exams := catalog.DefaultExams()

	seeded, err := store.SeedIfEmpty(ctx, colleges, categories, exams)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = store.SeedIfEmpty(ctx, colleges, categories, exams)
	require.NoError(t, err)
	assert.False(t, seeded, "second seed is skipped")

	gotColleges, gotCategories, gotExams, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, colleges, gotColleges)
	assert.Equal(t, categories, gotCategories)
	assert.Equal(t, exams, gotExams)
}

func TestCatalogReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counselor.db")
	ctx := context.Background()

	db, err := Open(path, logger.NewNop())
	require.NoError(t, err)
	store, err := NewCatalogStorage(db, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Seed(ctx, catalog.DefaultColleges()[:2], nil, nil))
	require.NoError(t, db.Close())

	db, err = Open(path, logger.NewNop())
	require.NoError(t, err)
	defer db.Close()
	store, err = NewCatalogStorage(db, logger.NewNop())
	require.NoError(t, err)

	colleges, categories, exams, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, colleges, 2)
	assert.Equal(t, "1", colleges[0].ID)
	assert.Empty(t, categories)
	assert.Empty(t, exams)
}

func TestTokenIssuanceRecordAndList(t *testing.T) {
	db := openTestDB(t)
	store, err := NewTokenIssuanceStorage(db, logger.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	step := 0
	store.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	first, err := store.Record(ctx, "10.0.0.1", nil)
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.NotEmpty(t, first.ID)

	second, err := store.Record(ctx, "10.0.0.2", errors.New("upstream status 401"))
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.NotEqual(t, first.ID, second.ID)

	list, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, "upstream status 401", list[0].ErrorMessage)
	assert.Equal(t, "10.0.0.1", list[1].ClientAddr)
	assert.True(t, list[1].Success)
	assert.True(t, base.Add(time.Minute).Equal(list[1].CreatedAt))

	page, err := store.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	total, ok, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, ok)
}
