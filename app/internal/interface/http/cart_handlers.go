package http

import (
	"net/http"
)

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	var req addCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	cart, err := a.cartSvc.Add(r.Context(), sessionID, req.ProductID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCart(cart))
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	cart, err := a.cartSvc.Remove(r.Context(), sessionID, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	cart, err := a.cartSvc.Get(r.Context(), sessionID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}
