package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domcategory "example.com/catalog-shop/app/internal/domain/category"
	domproduct "example.com/catalog-shop/app/internal/domain/product"
	"example.com/catalog-shop/app/internal/infra/memory"
	"example.com/catalog-shop/app/internal/infra/security"
	cartuc "example.com/catalog-shop/app/internal/usecase/cart"
	categoryuc "example.com/catalog-shop/app/internal/usecase/category"
	productuc "example.com/catalog-shop/app/internal/usecase/product"
	storefrontuc "example.com/catalog-shop/app/internal/usecase/storefront"
)

type mockProductCatalog struct {
	mu       sync.Mutex
	products []domproduct.Product
	err      error
	gate     chan struct{}
}

func (m *mockProductCatalog) ListProducts(ctx context.Context, limit int) ([]domproduct.Product, error) {
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockProductCatalog) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

type mockCategoryCatalog struct {
	categories []domcategory.Category
	err        error
}

func (m *mockCategoryCatalog) ListCategories(ctx context.Context) ([]domcategory.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func sampleProducts() []domproduct.Product {
	return []domproduct.Product{
		{ID: 1, Title: "Red Shirt", Description: "Cotton tee", Category: "clothing", Price: decimal.NewFromInt(20), Rating: 4.5, Stock: 3, Brand: "Acme"},
		{ID: 2, Title: "Blue Mug", Description: "Ceramic cup", Category: "home", Price: decimal.NewFromInt(10), Rating: 3.0, Stock: 0, Brand: "Potter"},
	}
}

func sampleCategories() []domcategory.Category {
	return []domcategory.Category{
		{Slug: "clothing", Name: "Clothing", URL: "https://dummyjson.com/products/category/clothing"},
		{Slug: "home", Name: "Home", URL: "https://dummyjson.com/products/category/home"},
	}
}

type shopClient struct {
	router http.Handler
	mu     sync.Mutex
	cookie *http.Cookie
}

func setupShopAPI(t *testing.T, products *mockProductCatalog, categories *mockCategoryCatalog) *shopClient {
	t.Helper()
	productSvc, err := productuc.NewService(products, 100, 16)
	require.NoError(t, err)
	categorySvc := categoryuc.NewService(categories)

	store, err := memory.NewSessionStore(16)
	require.NoError(t, err)
	storefrontSvc := storefrontuc.NewService(productSvc, categorySvc, store, zap.NewNop(), time.Second)
	t.Cleanup(storefrontSvc.Close)

	api := NewAPI(Dependencies{
		StorefrontService: storefrontSvc,
		CartService:       cartuc.NewService(storefrontSvc),
		TokenService:      security.NewJWTService("test-secret-0123456789", time.Hour),
		SessionTTL:        time.Hour,
	})
	return &shopClient{router: api.Router()}
}

func (c *shopClient) send(req *http.Request) *httptest.ResponseRecorder {
	c.mu.Lock()
	cookie := c.cookie
	c.mu.Unlock()
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookieName {
			c.mu.Lock()
			c.cookie = ck
			c.mu.Unlock()
		}
	}
	return rec
}

func (c *shopClient) get(target string) *httptest.ResponseRecorder {
	return c.send(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *shopClient) doJSON(method, target string, payload any) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *shopClient) postForm(target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req)
}

func (c *shopClient) status() string {
	rec := c.get("/api/v1/state")
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		return ""
	}
	return resp.Status
}

func waitStatus(t *testing.T, c *shopClient, want string) {
	t.Helper()
	require.Eventually(t, func() bool { return c.status() == want }, 2*time.Second, 10*time.Millisecond)
}

type cartResponse struct {
	Items []struct {
		ProductID int64 `json:"product_id"`
		Quantity  int64 `json:"quantity"`
	} `json:"items"`
	TotalItems int64  `json:"total_items"`
	TotalPrice string `json:"total_price"`
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func productIDs(t *testing.T, rec *httptest.ResponseRecorder) []int64 {
	t.Helper()
	var resp struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	ids := make([]int64, 0, len(resp.Data))
	for _, p := range resp.Data {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestHealth(t *testing.T) {
	c := setupShopAPI(t, &mockProductCatalog{}, &mockCategoryCatalog{})

	rec := c.get("/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.Nil(t, c.cookie, "health check must not open a session")
}

func TestIndex_LoadingThenReady(t *testing.T) {
	products := &mockProductCatalog{products: sampleProducts(), gate: make(chan struct{})}
	c := setupShopAPI(t, products, &mockCategoryCatalog{categories: sampleCategories()})

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Loading products...")
	require.Contains(t, rec.Body.String(), `http-equiv="refresh"`)
	require.NotNil(t, c.cookie, "first visit should issue a session cookie")
	require.True(t, c.cookie.HttpOnly)

	rec = c.get("/api/v1/products")
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		var resp struct {
			Data []map[string]any `json:"data"`
		}
		_ = json.Unmarshal(c.get("/api/v1/categories").Body.Bytes(), &resp)
		return len(resp.Data) == 2
	}, 2*time.Second, 10*time.Millisecond, "categories load independently of products")

	close(products.gate)
	waitStatus(t, c, "ready")

	rec = c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.NotContains(t, body, "Loading products...")
	require.Contains(t, body, "Showing 2 products")
	require.Contains(t, body, "Red Shirt")
	require.Contains(t, body, "Blue Mug")
	require.Contains(t, body, `<option value="clothing">Clothing</option>`)
	require.Contains(t, body, "3 in stock")
	require.Contains(t, body, "Out of stock")
	require.Contains(t, body, "Cotton tee...")
	require.NotContains(t, body, "Shopping Cart", "cart sidebar is hidden while the cart is empty")
}

func TestIndex_ErrorThenRetry(t *testing.T) {
	products := &mockProductCatalog{products: sampleProducts(), err: errors.New("HTTP error! status: 503")}
	c := setupShopAPI(t, products, &mockCategoryCatalog{categories: sampleCategories()})

	c.get("/")
	waitStatus(t, c, "error")

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Error Loading Products")
	require.Contains(t, rec.Body.String(), "HTTP error! status: 503")
	require.Contains(t, rec.Body.String(), `action="/retry"`)

	rec = c.get("/api/v1/products")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.JSONEq(t, `{"error":"HTTP error! status: 503"}`, rec.Body.String())

	products.setErr(nil)
	rec = c.postForm("/retry", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	waitStatus(t, c, "ready")
	rec = c.get("/api/v1/products")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []int64{1, 2}, productIDs(t, rec))
}

func TestAPI_RetryReturnsAccepted(t *testing.T) {
	products := &mockProductCatalog{err: errors.New("HTTP error! status: 500")}
	c := setupShopAPI(t, products, &mockCategoryCatalog{})

	c.get("/api/v1/state")
	waitStatus(t, c, "error")

	products.setErr(nil)
	rec := c.doJSON(http.MethodPost, "/api/v1/retry", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	waitStatus(t, c, "ready")
}

func TestAPI_FilterSortAndCartScenario(t *testing.T) {
	c := setupShopAPI(t, &mockProductCatalog{products: sampleProducts()}, &mockCategoryCatalog{categories: sampleCategories()})
	c.get("/api/v1/state")
	waitStatus(t, c, "ready")

	rec := c.doJSON(http.MethodPatch, "/api/v1/filter", map[string]any{"search": "shirt"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.get("/api/v1/products")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []int64{1}, productIDs(t, rec))

	rec = c.doJSON(http.MethodPatch, "/api/v1/filter", map[string]any{"search": "", "sort": "price-high"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.get("/api/v1/products")
	require.Equal(t, []int64{1, 2}, productIDs(t, rec))

	rec = c.doJSON(http.MethodPatch, "/api/v1/filter", map[string]any{"category": "home"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.get("/api/v1/products")
	require.Equal(t, []int64{2}, productIDs(t, rec))

	for _, id := range []int64{1, 1, 2} {
		rec = c.doJSON(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": id})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	cart := decodeCart(t, rec)
	require.Len(t, cart.Items, 2)
	require.Equal(t, int64(1), cart.Items[0].ProductID)
	require.Equal(t, int64(2), cart.Items[0].Quantity)
	require.Equal(t, int64(2), cart.Items[1].ProductID)
	require.Equal(t, int64(1), cart.Items[1].Quantity)
	require.Equal(t, int64(3), cart.TotalItems)
	require.Equal(t, "50.00", cart.TotalPrice)

	rec = c.doJSON(http.MethodDelete, "/api/v1/cart/items/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeCart(t, rec)
	require.Len(t, cart.Items, 1)
	require.Equal(t, "10.00", cart.TotalPrice)

	rec = c.get("/api/v1/cart")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(1), decodeCart(t, rec).TotalItems)
}

func TestAPI_UpdateFilter_InvalidSort_Returns400(t *testing.T) {
	c := setupShopAPI(t, &mockProductCatalog{products: sampleProducts()}, &mockCategoryCatalog{})

	rec := c.doJSON(http.MethodPatch, "/api/v1/filter", map[string]any{"sort": "cheapest"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.doJSON(http.MethodPatch, "/api/v1/filter", map[string]any{"sort": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_AddCartItem_Validation(t *testing.T) {
	c := setupShopAPI(t, &mockProductCatalog{products: sampleProducts()}, &mockCategoryCatalog{})
	c.get("/api/v1/state")
	waitStatus(t, c, "ready")

	rec := c.doJSON(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.doJSON(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 99})
	require.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader("product_id=1"))
	req.Header.Set("Content-Type", "text/plain")
	rec = c.send(req)
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestAPI_Categories(t *testing.T) {
	c := setupShopAPI(t, &mockProductCatalog{products: sampleProducts()}, &mockCategoryCatalog{categories: sampleCategories()})
	c.get("/api/v1/state")
	waitStatus(t, c, "ready")

	require.Eventually(t, func() bool {
		rec := c.get("/api/v1/categories")
		var resp struct {
			Data []map[string]any `json:"data"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		return len(resp.Data) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestIndex_CategoryFailureFallsBackToAll(t *testing.T) {
	c := setupShopAPI(t, &mockProductCatalog{products: sampleProducts()}, &mockCategoryCatalog{err: errors.New("HTTP error! status: 500")})
	c.get("/")
	waitStatus(t, c, "ready")

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "All Categories")
	require.NotContains(t, body, "Error Loading Products")
	require.Contains(t, body, "Showing 2 products")
}

func TestIndex_QueryFilters(t *testing.T) {
	c := setupShopAPI(t, &mockProductCatalog{products: sampleProducts()}, &mockCategoryCatalog{categories: sampleCategories()})
	c.get("/")
	waitStatus(t, c, "ready")

	require.Eventually(t, func() bool {
		return strings.Contains(c.get("/?category=clothing").Body.String(), "Showing 1 products in Clothing")
	}, 2*time.Second, 10*time.Millisecond)

	rec := c.get("/?q=zzz&category=all")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Showing 0 products")
	require.Contains(t, rec.Body.String(), "No products found matching your criteria.")

	// The filter is kept by the session between requests.
	rec = c.get("/")
	require.Contains(t, rec.Body.String(), "No products found matching your criteria.")
	require.Contains(t, rec.Body.String(), `value="zzz"`)

	rec = c.get("/?sort=cheapest")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndex_DiscountRendering(t *testing.T) {
	products := []domproduct.Product{
		{ID: 7, Title: "Lamp", Description: "Desk lamp", Category: "home", Price: decimal.NewFromInt(80), DiscountPercentage: 20, Rating: 4.4, Stock: 1},
	}
	c := setupShopAPI(t, &mockProductCatalog{products: products}, &mockCategoryCatalog{})
	c.get("/")
	waitStatus(t, c, "ready")

	body := c.get("/").Body.String()
	require.Contains(t, body, "-20%")
	require.Contains(t, body, "$80")
	require.Contains(t, body, "$100.00")
	require.Contains(t, body, "⭐⭐⭐⭐<")
	require.Contains(t, body, "4.4")
}

func TestCartPages(t *testing.T) {
	c := setupShopAPI(t, &mockProductCatalog{products: sampleProducts()}, &mockCategoryCatalog{})
	c.get("/")
	waitStatus(t, c, "ready")

	rec := c.postForm("/cart/items", url.Values{"product_id": {"1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = c.postForm("/cart/items", url.Values{"product_id": {"2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := c.get("/").Body.String()
	require.Contains(t, body, "Shopping Cart")
	require.Contains(t, body, "$20 x 1")
	require.Contains(t, body, "Total: $30.00")

	rec = c.postForm("/cart/items/1/remove", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, int64(1), decodeCart(t, c.get("/api/v1/cart")).TotalItems)

	rec = c.postForm("/cart/items", url.Values{"product_id": {"abc"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = c.postForm("/cart/items", url.Values{"product_id": {"0"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = c.postForm("/cart/items", url.Values{"product_id": {"42"}})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionReset(t *testing.T) {
	c := setupShopAPI(t, &mockProductCatalog{products: sampleProducts()}, &mockCategoryCatalog{})
	c.get("/")
	waitStatus(t, c, "ready")

	rec := c.doJSON(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := c.cookie

	rec = c.postForm("/session/reset", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	waitStatus(t, c, "ready")
	require.Equal(t, cookie.Value, c.cookie.Value, "reset keeps the session cookie")
	require.Equal(t, int64(0), decodeCart(t, c.get("/api/v1/cart")).TotalItems)
}

func TestSessionCookie_InvalidTokenIssuesNewSession(t *testing.T) {
	c := setupShopAPI(t, &mockProductCatalog{products: sampleProducts()}, &mockCategoryCatalog{})
	c.cookie = &http.Cookie{Name: sessionCookieName, Value: "not-a-jwt"}

	rec := c.get("/api/v1/state")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEqual(t, "not-a-jwt", c.cookie.Value)

	first := c.cookie.Value
	rec = c.get("/api/v1/state")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Result().Cookies(), "a valid cookie is not reissued")
	require.Equal(t, first, c.cookie.Value)
}
