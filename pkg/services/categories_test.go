package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/models"
	"company-workspace-backend/pkg/testutil"
)

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenInMemoryDB(t)
	svc := NewCategoryService(db)

	cat := &models.Category{Name: "Work", Color: models.CategoryPalette[0]}
	require.NoError(t, db.CreateCategory(ctx, cat))

	require.NoError(t, svc.UpdateCategory(ctx, cat.ID, CategoryUpdate{Name: "  Office ", Color: "#abcdef"}))
	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Office", list[0].Name)
	assert.Equal(t, "#abcdef", list[0].Color, "colours outside the palette are accepted")

	assert.ErrorIs(t, svc.UpdateCategory(ctx, cat.ID, CategoryUpdate{Name: "   "}), ErrInvalidInput)

	err = svc.UpdateCategory(ctx, "missing", CategoryUpdate{Name: "x", Color: "#000000"})
	assert.True(t, database.IsNoRows(err), "store errors are returned unmodified")

	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	assert.True(t, database.IsNoRows(svc.DeleteCategory(ctx, cat.ID)))
}

func TestCategoryPalette(t *testing.T) {
	svc := NewCategoryService(nil)
	palette := svc.Palette()
	require.Len(t, palette, 20)
	assert.Equal(t, "#2563eb", palette[0])

	palette[0] = "#000000"
	assert.Equal(t, "#2563eb", models.CategoryPalette[0], "callers get a copy")
	assert.True(t, models.InPalette("#f472b6"))
	assert.False(t, models.InPalette("#000000"))
}
