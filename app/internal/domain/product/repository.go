package product

import "context"

// Catalog is the read-only source of the product list.
type Catalog interface {
	ListProducts(ctx context.Context, limit int) ([]Product, error)
}
