package catalogapi

import (
	"context"

	"github.com/shopspring/decimal"

	domproduct "example.com/catalog-shop/app/internal/domain/product"
)

type productDTO struct {
	ID                 int64           `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage float64         `json:"discountPercentage"`
	Rating             float64         `json:"rating"`
	Stock              int64           `json:"stock"`
	Brand              string          `json:"brand"`
	Thumbnail          string          `json:"thumbnail"`
}

type productsResponse struct {
	Products []productDTO `json:"products"`
	Total    int          `json:"total"`
	Skip     int          `json:"skip"`
	Limit    int          `json:"limit"`
}

type ProductRepository struct {
	client *Client
}

func NewProductRepository(client *Client) *ProductRepository {
	return &ProductRepository{client: client}
}

func (r *ProductRepository) ListProducts(ctx context.Context, limit int) ([]domproduct.Product, error) {
	var resp productsResponse
	if err := r.client.getJSON(ctx, r.client.endpoint("/products", limitQuery(limit)), &resp); err != nil {
		return nil, err
	}

	products := make([]domproduct.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, domproduct.Product{
			ID:                 p.ID,
			Title:              p.Title,
			Description:        p.Description,
			Category:           p.Category,
			Price:              p.Price,
			DiscountPercentage: p.DiscountPercentage,
			Rating:             p.Rating,
			Stock:              p.Stock,
			Brand:              p.Brand,
			Thumbnail:          p.Thumbnail,
		})
	}
	return products, nil
}
