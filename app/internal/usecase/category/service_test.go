package category

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	dom "example.com/catalog-shop/app/internal/domain/category"
)

type mockCatalog struct {
	categories []dom.Category
	err        error
}

func (m *mockCatalog) ListCategories(ctx context.Context) ([]dom.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func TestList_ReturnsCategoriesInOrder(t *testing.T) {
	svc := NewService(&mockCatalog{categories: []dom.Category{
		{Slug: "beauty", Name: "Beauty"},
		{Slug: "fragrances", Name: "Fragrances"},
	}})

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"beauty", "fragrances"}, []string{list[0].Slug, list[1].Slug})
}

func TestList_DropsDuplicateAndBlankSlugs(t *testing.T) {
	svc := NewService(&mockCatalog{categories: []dom.Category{
		{Slug: "beauty", Name: "Beauty"},
		{Slug: "", Name: "Broken"},
		{Slug: "beauty", Name: "Beauty again"},
		{Slug: "groceries", Name: "Groceries"},
	}})

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Beauty", list[0].Name)
	require.Equal(t, "groceries", list[1].Slug)
}

func TestList_Error(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&mockCatalog{err: boom})

	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, boom)
}
