package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domcategory "example.com/catalog-shop/app/internal/domain/category"
	domproduct "example.com/catalog-shop/app/internal/domain/product"
	domstorefront "example.com/catalog-shop/app/internal/domain/storefront"
	storefrontuc "example.com/catalog-shop/app/internal/usecase/storefront"
)

//go:embed templates/*.html
var templateFS embed.FS

const descriptionPreview = 80

type sortOption struct {
	Value domproduct.SortKey
	Label string
}

var sortOptions = []sortOption{
	{Value: domproduct.SortDefault, Label: "Sort By"},
	{Value: domproduct.SortName, Label: "Name (A-Z)"},
	{Value: domproduct.SortPriceLow, Label: "Price: Low to High"},
	{Value: domproduct.SortPriceHigh, Label: "Price: High to Low"},
	{Value: domproduct.SortRating, Label: "Rating"},
}

type pageData struct {
	storefrontuc.View
	SortOptions   []sortOption
	CategoryLabel string
}

func (d pageData) IsLoading() bool { return d.Status == domstorefront.StatusLoading }
func (d pageData) IsError() bool { return d.Status == domstorefront.StatusError }

func parsePages() *template.Template {
	funcs := template.FuncMap{
		"stars":   func(n int) string { return strings.Repeat("⭐", n) },
		"preview": preview,
		"money":   func(d decimal.Decimal) string { return d.StringFixed(2) },
		"percent": func(f float64) string { return strconv.FormatFloat(f, 'f', 0, 64) },
		"rating":  func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) },
	}
	return template.Must(template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// preview keeps the first runes of a description and always appends an ellipsis.
func preview(s string) string {
	r := []rune(s)
	if len(r) > descriptionPreview {
		r = r[:descriptionPreview]
	}
	return string(r) + "..."
}

func (a *API) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := a.pages.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.Error("render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func respondPageError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), domainStatus(err))
}

func queryParam(r *http.Request, key string) *string {
	q := r.URL.Query()
	if !q.Has(key) {
		return nil
	}
	v := q.Get(key)
	return &v
}

func (a *API) handleIndex(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	events, err := filterEvents(queryParam(r, "q"), queryParam(r, "category"), queryParam(r, "sort"))
	if err != nil {
		respondPageError(w, err)
		return
	}
	if err := a.dispatchAll(sessionID, events); err != nil {
		respondPageError(w, err)
		return
	}

	view, err := a.storefrontSvc.View(sessionID)
	if err != nil {
		respondPageError(w, err)
		return
	}

	data := pageData{View: view, SortOptions: sortOptions}
	if view.Filter.Category != domproduct.AllCategories {
		data.CategoryLabel = view.Filter.Category
		if c, err := domcategory.Find(view.Categories, view.Filter.Category); err == nil {
			data.CategoryLabel = c.Name
		}
	}
	a.render(w, http.StatusOK, "index", data)
}

func (a *API) handleRetryPage(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err := a.storefrontSvc.Retry(sessionID); err != nil {
		respondPageError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *API) handleAddCartItemPage(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(r.PostForm.Get("product_id"), 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := addCartItemRequest{ProductID: id}
	if err := a.validator.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := a.cartSvc.Add(r.Context(), sessionID, req.ProductID); err != nil {
		respondPageError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *API) handleRemoveCartItemPage(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := a.cartSvc.Remove(r.Context(), sessionID, id); err != nil {
		respondPageError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleResetSession drops the session; the next request mounts a fresh one
// under the same cookie.
func (a *API) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getSessionID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	a.storefrontSvc.Unmount(sessionID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
