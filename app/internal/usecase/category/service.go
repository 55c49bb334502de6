package category

import (
	"context"

	dom "example.com/catalog-shop/app/internal/domain/category"
)

type Service struct {
	catalog dom.Catalog
}

func NewService(catalog dom.Catalog) *Service {
	return &Service{catalog: catalog}
}

func (s *Service) List(ctx context.Context) ([]dom.Category, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	// Deduplicate by slug; the first occurrence keeps its position.
	seen := make(map[string]struct{}, len(categories))
	out := make([]dom.Category, 0, len(categories))
	for _, c := range categories {
		if c.Slug == "" {
			continue
		}
		if _, ok := seen[c.Slug]; ok {
			continue
		}
		seen[c.Slug] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}
