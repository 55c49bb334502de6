package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestOriginalPrice(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(90), DiscountPercentage: 10}
	require.True(t, p.HasDiscount())
	require.Equal(t, "100.00", p.OriginalPrice().StringFixed(2))

	p = Product{Price: decimal.RequireFromString("9.99"), DiscountPercentage: 7.17}
	require.Equal(t, "10.76", p.OriginalPrice().StringFixed(2))
}

func TestOriginalPrice_NoDiscount(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(5)}
	require.False(t, p.HasDiscount())
	require.True(t, p.OriginalPrice().Equal(decimal.NewFromInt(5)))

	p.DiscountPercentage = 100
	require.True(t, p.OriginalPrice().Equal(decimal.NewFromInt(5)))
}

func TestStars(t *testing.T) {
	cases := map[float64]int{
		0:    0,
		2.49: 2,
		2.5:  3,
		4.94: 5,
		7:    5,
		-1:   0,
	}
	for rating, want := range cases {
		require.Equal(t, want, Product{Rating: rating}.Stars(), "rating %v", rating)
	}
}

func TestInStock(t *testing.T) {
	require.True(t, Product{Stock: 3}.InStock())
	require.False(t, Product{Stock: 0}.InStock())
}
