package cart

import (
	"context"
	"errors"

	domcart "example.com/catalog-shop/app/internal/domain/cart"
	domproduct "example.com/catalog-shop/app/internal/domain/product"
	domstorefront "example.com/catalog-shop/app/internal/domain/storefront"
)

var ErrInvalidProductID = errors.New("product id must be positive")

type Sessions interface {
	State(sessionID string) (domstorefront.State, error)
	Dispatch(sessionID string, e domstorefront.Event) (domstorefront.State, error)
}

type Service struct {
	sessions Sessions
}

func NewService(sessions Sessions) *Service {
	return &Service{sessions: sessions}
}

// Add puts one unit of a loaded product into the session cart.
// Stock is not checked.
func (s *Service) Add(ctx context.Context, sessionID string, productID int64) (domcart.Cart, error) {
	if productID <= 0 {
		return domcart.Cart{}, ErrInvalidProductID
	}
	state, err := s.sessions.State(sessionID)
	if err != nil {
		return domcart.Cart{}, err
	}
	p, ok := state.FindProduct(productID)
	if !ok {
		return domcart.Cart{}, domproduct.ErrProductNotFound
	}

	state, err = s.sessions.Dispatch(sessionID, domstorefront.CartItemAdded{Product: p})
	if err != nil {
		return domcart.Cart{}, err
	}
	return state.Cart, nil
}

// Remove drops the product's line. Removing an absent product is not an error.
func (s *Service) Remove(ctx context.Context, sessionID string, productID int64) (domcart.Cart, error) {
	state, err := s.sessions.Dispatch(sessionID, domstorefront.CartItemRemoved{ProductID: productID})
	if err != nil {
		return domcart.Cart{}, err
	}
	return state.Cart, nil
}

func (s *Service) Get(ctx context.Context, sessionID string) (domcart.Cart, error) {
	state, err := s.sessions.State(sessionID)
	if err != nil {
		return domcart.Cart{}, err
	}
	return state.Cart, nil
}
