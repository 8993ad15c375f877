package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/app"
	"github.com/jcmexdev/supermarket-storefront/internal/cart/domain"
	"github.com/jcmexdev/supermarket-storefront/internal/catalog"
	"github.com/jcmexdev/supermarket-storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/supermarket-storefront/internal/storefront/infra/httpx/middlewares"
)

// Handler serves the storefront: catalog listings and the shopping cart.
type Handler struct {
	cart       ports.Cart
	catalog    ports.Catalog
	history    ports.History
	priceScale decimal.Decimal
}

// NewHandler wires the handler. priceScale converts API prices into
// storefront prices; values below 1 fall back to catalog.DefaultPriceScale.
func NewHandler(cart ports.Cart, cat ports.Catalog, priceScale int64) *Handler {
	if priceScale < 1 {
		priceScale = catalog.DefaultPriceScale
	}
	return &Handler{
		cart:       cart,
		catalog:    cat,
		priceScale: decimal.NewFromInt(priceScale),
	}
}

// ListProducts returns the storefront listings, filtered by ?q=.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}

	listings := catalog.NewListings(products, h.catalog.BaseURL(), h.priceScale)
	listings = catalog.Filter(listings, r.URL.Query().Get("q"))

	out := make([]ListingResponse, len(listings))
	for i, l := range listings {
		out[i] = h.mapListing(l)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.mapListing(catalog.NewListing(p, h.catalog.BaseURL(), h.priceScale)))
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = CategoryResponse{ID: c.ID, Title: c.Title}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapSnapshot(h.cart.Snapshot()))
}

// AddItem adds the posted product snapshot as given.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	price, err := parseNumber(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_price", err.Error())
		return
	}

	snap := h.cart.AddItem(domain.Product{
		ID:          domain.ProductID(req.ID),
		Title:       req.Title,
		Picture:     req.Picture,
		Description: req.Description,
		Price:       price,
	})

	slog.InfoContext(r.Context(), "item added to cart",
		"request_id", middlewares.RequestID(r.Context()),
		"product_id", req.ID,
		"total_items", snap.TotalItems,
	)
	writeJSON(w, http.StatusOK, mapSnapshot(snap))
}

// AddProduct looks the product up in the catalog and adds its listing.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}

	listing := catalog.NewListing(p, h.catalog.BaseURL(), h.priceScale)
	snap := h.cart.AddItem(listing.CartProduct())

	slog.InfoContext(r.Context(), "product added to cart",
		"request_id", middlewares.RequestID(r.Context()),
		"product_id", id,
		"total_items", snap.TotalItems,
	)
	writeJSON(w, http.StatusOK, mapSnapshot(snap))
}

// RemoveItem takes one unit out. Unknown ids leave the cart unchanged.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, mapSnapshot(h.cart.RemoveItem(domain.ProductID(id))))
}

func (h *Handler) ItemQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, QuantityResponse{
		ProductID: id,
		Quantity:  h.cart.ItemQuantity(domain.ProductID(id)),
	})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	snap := h.cart.ClearCart()
	slog.InfoContext(r.Context(), "cart cleared", "request_id", middlewares.RequestID(r.Context()))
	writeJSON(w, http.StatusOK, mapSnapshot(snap))
}

// ResetAnimation is called by the view once the add animation has played.
func (h *Handler) ResetAnimation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapSnapshot(h.cart.ResetAnimation()))
}

// WithHistory enables GET /cart/history.
func (h *Handler) WithHistory(history ports.History) *Handler {
	h.history = history
	return h
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// History returns the latest journal rows, newest first. ?limit= caps the
// count.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "history_disabled", "cart journal is not configured")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid_limit", raw)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "reading cart history failed",
			"request_id", middlewares.RequestID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "history_error", err.Error())
		return
	}

	out := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntryResponse{
			Version:     e.Version,
			Op:          string(e.Op),
			TotalItems:  e.TotalItems,
			TotalPrice:  number(e.TotalPrice),
			AnimateCart: e.AnimateCart,
			TraceID:     e.TraceID,
			RecordedAt:  e.RecordedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) mapListing(l catalog.Listing) ListingResponse {
	pictures := l.Pictures
	if pictures == nil {
		pictures = []string{}
	}
	return ListingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       number(l.Price),
		Stock:       l.Stock,
		CategoryID:  l.CategoryID,
		Picture:     l.Picture,
		Pictures:    pictures,
		InCart:      h.cart.ItemQuantity(domain.ProductID(l.ID)),
	}
}

func mapSnapshot(snap app.Snapshot) CartResponse {
	items := make([]CartItemResponse, len(snap.Items))
	for i, it := range snap.Items {
		items[i] = CartItemResponse{
			ID:          int64(it.ID),
			Title:       it.Title,
			Picture:     it.Picture,
			Description: it.Description,
			Price:       number(it.Price),
			Quantity:    it.Quantity,
			Subtotal:    number(it.Subtotal()),
		}
	}
	return CartResponse{
		Items:       items,
		TotalItems:  snap.TotalItems,
		TotalPrice:  number(snap.TotalPrice),
		AnimateCart: snap.AnimateCart,
	}
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id", raw)
		return 0, false
	}
	return id, true
}

// writeCatalogError maps catalog failures: not found stays 404, anything else
// is reported as a bad gateway.
func writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product_not_found", err.Error())
		return
	}
	slog.ErrorContext(r.Context(), "catalog call failed",
		"request_id", middlewares.RequestID(r.Context()),
		"error", err,
	)
	writeError(w, http.StatusBadGateway, "catalog_error", err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
