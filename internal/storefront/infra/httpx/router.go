package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/supermarket-storefront/internal/storefront/infra/httpx/middlewares"
)

func NewRouter(handler *Handler, admin *AdminHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Health)

	r.Get("/products", handler.ListProducts)
	r.Get("/products/{id}", handler.GetProduct)
	r.Get("/categories", handler.ListCategories)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", handler.GetCart)
		r.Delete("/", handler.ClearCart)
		r.Post("/items", handler.AddItem)
		r.Delete("/items/{id}", handler.RemoveItem)
		r.Get("/items/{id}/quantity", handler.ItemQuantity)
		r.Post("/products/{id}", handler.AddProduct)
		r.Delete("/animation", handler.ResetAnimation)
		r.Get("/history", handler.History)
	})

	r.Route("/admin/products", func(r chi.Router) {
		r.Get("/", admin.ListProducts)
		r.Post("/", admin.CreateProduct)
		r.Get("/{id}", admin.GetProduct)
		r.Put("/{id}", admin.UpdateProduct)
		r.Delete("/{id}", admin.DeleteProduct)
		r.Post("/{id}/pictures", admin.UploadPicture)
		r.Delete("/{id}/pictures", admin.DeletePicture)
	})

	return otelhttp.NewHandler(r, "storefront")
}
