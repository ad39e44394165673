package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storebot/internal/domain"
	"storebot/internal/models"
)

const (
	defaultTopProducts = 10
	maxTopProducts     = 100
)

// TopProductsSource is satisfied by the order service.
type TopProductsSource interface {
	TopProducts(ctx context.Context, n int) ([]models.ProductCount, error)
}

// CatalogHandler serves the read-only catalog endpoints.
type CatalogHandler struct {
	catalog domain.CatalogService
	top     TopProductsSource
}

func NewCatalogHandler(catalog domain.CatalogService, top TopProductsSource) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, top: top}
}

type productView struct {
	*models.Product
	FinalPrice int64 `json:"final_price"`
}

func viewProducts(products []*models.Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, productView{Product: p, FinalPrice: p.DiscountedPrice()})
	}
	return out
}

func (h *CatalogHandler) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	filter := models.ProductFilter{
		Category: strings.TrimSpace(q.Get("category")),
		SortBy:   strings.TrimSpace(q.Get("sort")),
	}
	switch filter.SortBy {
	case "", models.SortByName, models.SortByPriceAsc, models.SortByPriceDesc, models.SortByDiscount:
	default:
		writeError(w, http.StatusBadRequest, "unknown sort key")
		return
	}

	products, err := h.catalog.GetProducts(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": viewProducts(products)})
}

func (h *CatalogHandler) handleProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/products/"
	name := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "product name is required")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), name)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, productView{Product: product, FinalPrice: product.DiscountedPrice()})
}

func (h *CatalogHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	products, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": viewProducts(products)})
}

func (h *CatalogHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *CatalogHandler) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.top == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	n := defaultTopProducts
	if raw := strings.TrimSpace(r.URL.Query().Get("n")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = min(parsed, maxTopProducts)
	}

	top, err := h.top.TopProducts(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to aggregate orders")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"top": top})
}
