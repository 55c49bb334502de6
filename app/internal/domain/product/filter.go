package product

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AllCategories disables the category filter.
const AllCategories = "all"

type SortKey string

const (
	SortDefault   SortKey = "default"
	SortName      SortKey = "name"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
)

func (k SortKey) IsValid() bool {
	switch k {
	case SortDefault, SortName, SortPriceLow, SortPriceHigh, SortRating:
		return true
	default:
		return false
	}
}

func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(s)
	if !k.IsValid() {
		return "", ErrInvalidSortKey
	}
	return k, nil
}

type ListFilter struct {
	Search   string
	Category string
	Sort     SortKey
}

func DefaultFilter() ListFilter {
	return ListFilter{Category: AllCategories, Sort: SortDefault}
}

// Apply returns the products matching the filter in display order.
// The input slice is never modified.
func Apply(products []Product, f ListFilter) []Product {
	out := make([]Product, 0, len(products))
	term := strings.ToLower(f.Search)
	for _, p := range products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if f.Category != AllCategories && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortName:
		// Collator keeps internal buffers, one per call.
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b Product) int {
			return c.CompareString(a.Title, b.Title)
		})
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortRating:
		slices.SortStableFunc(out, func(a, b Product) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	}
	return out
}
