package http

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domcart "example.com/catalog-shop/app/internal/domain/cart"
	domcategory "example.com/catalog-shop/app/internal/domain/category"
	domproduct "example.com/catalog-shop/app/internal/domain/product"
	domstorefront "example.com/catalog-shop/app/internal/domain/storefront"
	cartuc "example.com/catalog-shop/app/internal/usecase/cart"
	storefrontuc "example.com/catalog-shop/app/internal/usecase/storefront"
)

// TokenService issues and verifies the session cookie.
type TokenService interface {
	NewSessionID() string
	GenerateToken(sessionID string) (string, error)
	ParseToken(token string) (string, error)
}

type API struct {
	storefrontSvc *storefrontuc.Service
	cartSvc       *cartuc.Service
	tokenSvc      TokenService
	sessionTTL    time.Duration
	logger        *zap.Logger
	validator     *validator.Validate
	pages         *template.Template
}

type Dependencies struct {
	StorefrontService *storefrontuc.Service
	CartService       *cartuc.Service
	TokenService      TokenService
	SessionTTL        time.Duration
	Logger            *zap.Logger
}

func NewAPI(deps Dependencies) *API {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		storefrontSvc: deps.StorefrontService,
		cartSvc:       deps.CartService,
		tokenSvc:      deps.TokenService,
		sessionTTL:    deps.SessionTTL,
		logger:        logger,
		validator:     validator.New(),
		pages:         parsePages(),
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.accessLog)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(a.sessionMiddleware)
		pr.Get("/", a.handleIndex)
		pr.Post("/retry", a.handleRetryPage)
		pr.Post("/cart/items", a.handleAddCartItemPage)
		pr.Post("/cart/items/{id}/remove", a.handleRemoveCartItemPage)
		pr.Post("/session/reset", a.handleResetSession)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json"))
		r.Use(a.sessionMiddleware)

		r.Get("/state", a.handleGetState)
		r.Get("/products", a.handleListProducts)
		r.Get("/categories", a.handleListCategories)
		r.Patch("/filter", a.handleUpdateFilter)
		r.Post("/retry", a.handleRetry)

		r.Get("/cart", a.handleGetCart)
		r.Post("/cart/items", a.handleAddCartItem)
		r.Delete("/cart/items/{id}", a.handleRemoveCartItem)
	})

	return r
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func mapProduct(p domproduct.Product) map[string]any {
	m := map[string]any{
		"id":                  p.ID,
		"title":               p.Title,
		"description":         p.Description,
		"category":            p.Category,
		"price":               p.Price,
		"discount_percentage": p.DiscountPercentage,
		"rating":              p.Rating,
		"stock":               p.Stock,
		"brand":               p.Brand,
		"thumbnail":           p.Thumbnail,
	}
	if p.HasDiscount() {
		m["original_price"] = p.OriginalPrice().StringFixed(2)
	}
	return m
}

func mapProducts(products []domproduct.Product) []map[string]any {
	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapProduct(p))
	}
	return resp
}

func mapCategory(c domcategory.Category) map[string]any {
	return map[string]any{
		"slug": c.Slug,
		"name": c.Name,
		"url":  c.URL,
	}
}

func mapCart(cart domcart.Cart) map[string]any {
	items := make([]map[string]any, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		items = append(items, map[string]any{
			"product_id": line.ID,
			"title":      line.Title,
			"price":      line.Price,
			"quantity":   line.Quantity,
			"thumbnail":  line.Thumbnail,
		})
	}
	return map[string]any{
		"items":       items,
		"total_items": cart.TotalItems(),
		"total_price": cart.FormattedTotal(),
	}
}

func mapFilter(f domproduct.ListFilter) map[string]any {
	return map[string]any{
		"search":   f.Search,
		"category": f.Category,
		"sort":     f.Sort,
	}
}

func mapView(v storefrontuc.View) map[string]any {
	categories := make([]map[string]any, 0, len(v.Categories))
	for _, c := range v.Categories {
		categories = append(categories, mapCategory(c))
	}
	resp := map[string]any{
		"status":     v.Status.String(),
		"filter":     mapFilter(v.Filter),
		"categories": categories,
		"cart":       mapCart(v.Cart),
	}
	if v.Err != "" {
		resp["error"] = v.Err
	}
	if v.Status == domstorefront.StatusReady {
		resp["visible_count"] = len(v.Visible)
	}
	return resp
}

func handleDomainError(w http.ResponseWriter, err error) {
	respondError(w, domainStatus(err), err)
}

func domainStatus(err error) int {
	switch {
	case errors.Is(err, storefrontuc.ErrSessionNotFound),
		errors.Is(err, domproduct.ErrProductNotFound),
		errors.Is(err, domcategory.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domproduct.ErrInvalidSortKey),
		errors.Is(err, cartuc.ErrInvalidProductID):
		return http.StatusBadRequest
	case errors.Is(err, storefrontuc.ErrServiceClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
