package product

import (
	"math"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                 int64
	Title              string
	Description        string
	Category           string
	Price              decimal.Decimal
	DiscountPercentage float64
	Rating             float64
	Stock              int64
	Brand              string
	Thumbnail          string
}

func (p Product) HasDiscount() bool {
	return p.DiscountPercentage > 0
}

// OriginalPrice reverses the discount: price / (1 - discount/100), rounded to cents.
// A discount outside (0, 100) leaves the price as is.
func (p Product) OriginalPrice() decimal.Decimal {
	if p.DiscountPercentage <= 0 || p.DiscountPercentage >= 100 {
		return p.Price
	}
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(p.DiscountPercentage).Div(decimal.NewFromInt(100)))
	return p.Price.Div(factor).Round(2)
}

func (p Product) Stars() int {
	n := int(math.Round(p.Rating))
	switch {
	case n < 0:
		return 0
	case n > 5:
		return 5
	}
	return n
}

func (p Product) InStock() bool {
	return p.Stock > 0
}
