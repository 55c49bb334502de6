package storefront

import (
	domcart "example.com/catalog-shop/app/internal/domain/cart"
	domcategory "example.com/catalog-shop/app/internal/domain/category"
	domproduct "example.com/catalog-shop/app/internal/domain/product"
)

type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// State is everything one storefront session renders from.
// Products and Categories are shared between snapshots and must not be modified.
type State struct {
	Products       []domproduct.Product
	Categories     []domcategory.Category
	Cart           domcart.Cart
	Filter         domproduct.ListFilter
	Loading        bool
	Err            string
	CatalogVersion uint64
}

func Initial() State {
	return State{
		Filter:  domproduct.DefaultFilter(),
		Loading: true,
	}
}

func (s State) Status() Status {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Err != "":
		return StatusError
	default:
		return StatusReady
	}
}

func (s State) FindProduct(id int64) (domproduct.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return domproduct.Product{}, false
}
