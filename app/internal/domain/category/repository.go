package category

import "context"

type Catalog interface {
	ListCategories(ctx context.Context) ([]Category, error)
}
