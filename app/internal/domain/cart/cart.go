package cart

import (
	"github.com/shopspring/decimal"

	domproduct "example.com/catalog-shop/app/internal/domain/product"
)

// Line is one product in the cart. Lines carry a copy of the product as it was added.
type Line struct {
	domproduct.Product
	Quantity int64
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// Cart is an ordered list of lines with at most one line per product ID.
// Operations return a new Cart and leave the receiver untouched.
type Cart struct {
	Lines []Line
}

func (c Cart) Add(p domproduct.Product) Cart {
	lines := make([]Line, len(c.Lines), len(c.Lines)+1)
	copy(lines, c.Lines)
	for i := range lines {
		if lines[i].ID == p.ID {
			lines[i].Quantity++
			return Cart{Lines: lines}
		}
	}
	return Cart{Lines: append(lines, Line{Product: p, Quantity: 1})}
}

func (c Cart) Remove(productID int64) Cart {
	lines := make([]Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.ID != productID {
			lines = append(lines, l)
		}
	}
	return Cart{Lines: lines}
}

func (c Cart) Line(productID int64) (Line, bool) {
	for _, l := range c.Lines {
		if l.ID == productID {
			return l, true
		}
	}
	return Line{}, false
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) TotalItems() int64 {
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// FormattedTotal renders the total with exactly two decimals, e.g. "50.00".
func (c Cart) FormattedTotal() string {
	return c.TotalPrice().StringFixed(2)
}
