package catalogapi

import (
	"context"

	domcategory "example.com/catalog-shop/app/internal/domain/category"
)

type categoryDTO struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type CategoryRepository struct {
	client *Client
}

func NewCategoryRepository(client *Client) *CategoryRepository {
	return &CategoryRepository{client: client}
}

func (r *CategoryRepository) ListCategories(ctx context.Context) ([]domcategory.Category, error) {
	var resp []categoryDTO
	if err := r.client.getJSON(ctx, r.client.endpoint("/products/categories", nil), &resp); err != nil {
		return nil, err
	}

	categories := make([]domcategory.Category, 0, len(resp))
	for _, c := range resp {
		categories = append(categories, domcategory.Category{
			Slug: c.Slug,
			Name: c.Name,
			URL:  c.URL,
		})
	}
	return categories, nil
}
