package product

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	dom "example.com/catalog-shop/app/internal/domain/product"
)

const defaultCacheSize = 256

type visibleKey struct {
	version uint64
	filter  dom.ListFilter
}

type Service struct {
	catalog dom.Catalog
	limit   int
	visible *lru.Cache
	version atomic.Uint64
}

func NewService(catalog dom.Catalog, limit int, cacheSize int) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		catalog: catalog,
		limit:   limit,
		visible: cache,
	}, nil
}

// Fetch loads the product list and stamps it with a process-unique catalog version.
func (s *Service) Fetch(ctx context.Context) ([]dom.Product, uint64, error) {
	products, err := s.catalog.ListProducts(ctx, s.limit)
	if err != nil {
		return nil, 0, err
	}
	return products, s.version.Add(1), nil
}

// Visible returns the derived list for products at the given catalog version.
// Results are shared between callers and must be treated as read-only.
func (s *Service) Visible(version uint64, products []dom.Product, filter dom.ListFilter) []dom.Product {
	key := visibleKey{version: version, filter: filter}
	if v, ok := s.visible.Get(key); ok {
		return v.([]dom.Product)
	}
	out := dom.Apply(products, filter)
	s.visible.Add(key, out)
	return out
}
