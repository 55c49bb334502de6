package storefront

import (
	domcategory "example.com/catalog-shop/app/internal/domain/category"
	domproduct "example.com/catalog-shop/app/internal/domain/product"
)

// Event is one input to Reduce: a user action or a fetch completion.
type Event interface {
	apply(State) State
}

type ProductsRequested struct{}

type ProductsLoaded struct {
	Products []domproduct.Product
	Version  uint64
}

type ProductsFailed struct {
	Err string
}

type CategoriesLoaded struct {
	Categories []domcategory.Category
}

// CategoriesFailed leaves the state untouched; the category filter keeps only "all".
type CategoriesFailed struct {
	Err string
}

type SearchChanged struct {
	Term string
}

type CategoryChanged struct {
	Slug string
}

type SortChanged struct {
	Sort domproduct.SortKey
}

type CartItemAdded struct {
	Product domproduct.Product
}

type CartItemRemoved struct {
	ProductID int64
}

func (ProductsRequested) apply(s State) State {
	s.Loading = true
	s.Err = ""
	return s
}

func (e ProductsLoaded) apply(s State) State {
	s.Products = e.Products
	s.CatalogVersion = e.Version
	s.Loading = false
	s.Err = ""
	return s
}

func (e ProductsFailed) apply(s State) State {
	s.Loading = false
	s.Err = e.Err
	return s
}

func (e CategoriesLoaded) apply(s State) State {
	s.Categories = e.Categories
	return s
}

func (CategoriesFailed) apply(s State) State {
	return s
}

func (e SearchChanged) apply(s State) State {
	s.Filter.Search = e.Term
	return s
}

func (e CategoryChanged) apply(s State) State {
	s.Filter.Category = e.Slug
	return s
}

func (e SortChanged) apply(s State) State {
	s.Filter.Sort = e.Sort
	return s
}

func (e CartItemAdded) apply(s State) State {
	s.Cart = s.Cart.Add(e.Product)
	return s
}

func (e CartItemRemoved) apply(s State) State {
	s.Cart = s.Cart.Remove(e.ProductID)
	return s
}
