package http

import (
	"errors"
	"net/http"

	domproduct "example.com/catalog-shop/app/internal/domain/product"
	domstorefront "example.com/catalog-shop/app/internal/domain/storefront"
)

type updateFilterRequest struct {
	Search   *string `json:"search" validate:"omitempty,max=200"`
	Category *string `json:"category" validate:"omitempty,max=100"`
	Sort     *string `json:"sort" validate:"omitempty,oneof=default name price-low price-high rating"`
}

func (a *API) handleGetState(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	view, err := a.storefrontSvc.View(sessionID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapView(view))
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	view, err := a.storefrontSvc.View(sessionID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	switch view.Status {
	case domstorefront.StatusLoading:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": view.Status.String()})
	case domstorefront.StatusError:
		respondError(w, http.StatusBadGateway, errors.New(view.Err))
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"data":   mapProducts(view.Visible),
			"total":  len(view.Visible),
			"filter": mapFilter(view.Filter),
		})
	}
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	state, err := a.storefrontSvc.State(sessionID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(state.Categories))
	for _, c := range state.Categories {
		resp = append(resp, mapCategory(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleUpdateFilter(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	var req updateFilterRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	events, err := filterEvents(req.Search, req.Category, req.Sort)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if err := a.dispatchAll(sessionID, events); err != nil {
		handleDomainError(w, err)
		return
	}

	view, err := a.storefrontSvc.View(sessionID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapView(view))
}

func (a *API) handleRetry(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	if err := a.storefrontSvc.Retry(sessionID); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": domstorefront.StatusLoading.String()})
}

// filterEvents turns the present filter fields into events, in search,
// category, sort order. An empty category selects every category.
func filterEvents(search, category, sort *string) ([]domstorefront.Event, error) {
	var events []domstorefront.Event
	if search != nil {
		events = append(events, domstorefront.SearchChanged{Term: *search})
	}
	if category != nil {
		slug := *category
		if slug == "" {
			slug = domproduct.AllCategories
		}
		events = append(events, domstorefront.CategoryChanged{Slug: slug})
	}
	if sort != nil {
		key, err := domproduct.ParseSortKey(*sort)
		if err != nil {
			return nil, err
		}
		events = append(events, domstorefront.SortChanged{Sort: key})
	}
	return events, nil
}

func (a *API) dispatchAll(sessionID string, events []domstorefront.Event) error {
	for _, e := range events {
		if _, err := a.storefrontSvc.Dispatch(sessionID, e); err != nil {
			return err
		}
	}
	return nil
}
