package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/jcmexdev/supermarket-storefront/internal/catalog"
	"github.com/jcmexdev/supermarket-storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/supermarket-storefront/internal/storefront/infra/httpx/middlewares"
)

// AdminHandler exposes product CRUD and picture management on top of the
// catalog API. The caller's bearer token is forwarded as is.
type AdminHandler struct {
	catalog ports.Catalog
}

func NewAdminHandler(cat ports.Catalog) *AdminHandler {
	return &AdminHandler{catalog: cat}
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = mapProduct(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}
	p, err := h.catalog.CreateProduct(r.Context(), in)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "product created",
		"request_id", middlewares.RequestID(r.Context()), "product_id", p.ID)
	writeJSON(w, http.StatusCreated, mapProduct(p))
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	in, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}
	p, err := h.catalog.UpdateProduct(r.Context(), id, in)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "product updated",
		"request_id", middlewares.RequestID(r.Context()), "product_id", id)
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		writeCatalogError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "product deleted",
		"request_id", middlewares.RequestID(r.Context()), "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// UploadPicture forwards the multipart field "files" to the catalog.
func (h *AdminHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, catalog.MaxPictureSize+1<<20)
	file, header, err := r.FormFile("files")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "picture_too_large", "max 5MB")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_upload", err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, catalog.MaxPictureSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload", err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	path, err := h.catalog.UploadPicture(r.Context(), id, header.Filename, contentType, data)
	switch {
	case errors.Is(err, catalog.ErrNotImage):
		writeError(w, http.StatusBadRequest, "not_an_image", contentType)
		return
	case errors.Is(err, catalog.ErrPictureTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "picture_too_large", "max 5MB")
		return
	case err != nil:
		writeCatalogError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, PictureResponse{
		Path: path,
		URL:  catalog.ImageURL(h.catalog.BaseURL(), path),
	})
}

func (h *AdminHandler) DeletePicture(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	var req PictureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "file_path is required")
		return
	}
	if err := h.catalog.DeletePicture(r.Context(), id, req.FilePath); err != nil {
		writeCatalogError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeProductRequest(w http.ResponseWriter, r *http.Request) (catalog.ProductInput, bool) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return catalog.ProductInput{}, false
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "title is required")
		return catalog.ProductInput{}, false
	}
	price, err := parseNumber(req.Price)
	if err != nil || price.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_price", "price must be a non-negative number")
		return catalog.ProductInput{}, false
	}
	if req.Stock < 0 {
		writeError(w, http.StatusBadRequest, "invalid_stock", "stock must not be negative")
		return catalog.ProductInput{}, false
	}
	return catalog.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		Pictures:    req.Pictures,
		Extra:       req.Extra,
	}, true
}

func mapProduct(p catalog.Product) ProductResponse {
	pictures := p.Pictures
	if pictures == nil {
		pictures = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       number(p.Price),
		Stock:       p.Stock,
		CategoryID:  p.CategoryRef(),
		Pictures:    pictures,
		Extra:       p.Extra,
	}
}
