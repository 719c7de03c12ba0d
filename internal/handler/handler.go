package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/storefront-api/internal/blob"
	"github.com/xenking/storefront-api/internal/domain/catalog"
	"github.com/xenking/storefront-api/internal/domain/customer"
	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/imaging"
)

// Handler serves the REST API, delegating business logic to the injected
// domain services and repositories.
type Handler struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	customers  *customer.Service
	assembler  *order.Assembler
	placement  *order.PlacementService
	queries    *order.QueryService
	images     *imaging.Processor
	blobs      blob.Store

	// now supplies the server-authoritative order timestamp.
	now func() time.Time
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	customers *customer.Service,
	assembler *order.Assembler,
	placement *order.PlacementService,
	queries *order.QueryService,
	images *imaging.Processor,
	blobs blob.Store,
) *Handler {
	return &Handler{
		products:   products,
		categories: categories,
		customers:  customers,
		assembler:  assembler,
		placement:  placement,
		queries:    queries,
		images:     images,
		blobs:      blobs,
		now:        time.Now,
	}
}

// Routes mounts all API routes. The security middleware resolves the caller
// identity for every request; route groups that need one enforce it.
func (h *Handler) Routes(sec *SecurityHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(sec.Authenticate)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Get("/{id}", h.GetCategory)
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			r.Post("/", h.CreateCategory)
			r.Put("/{id}", h.UpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})
	})

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.CreateCustomer)
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			r.Get("/", h.ListCustomers)
			r.Get("/by-email", h.GetCustomerByEmail)
			r.Get("/{id}", h.GetCustomer)
			r.Put("/{id}", h.UpdateCustomer)
			r.Delete("/{id}", h.DeleteCustomer)
			r.Post("/{id}/picture", h.UploadCustomerPicture)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/{id}", h.GetOrder)
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			r.Get("/", h.ListMyOrders)
			r.Post("/", h.PlaceOrder)
		})
	})

	return r
}

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON parses the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
