// AngelaMos | 2026
// handler.go

package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/storedeck/storefront/internal/core"
	"github.com/storedeck/storefront/internal/middleware"
	"github.com/storedeck/storefront/internal/store"
)

type Handler struct {
	service   *Service
	guard     Guard
	validator *validator.Validate
}

func NewHandler(service *Service, guard Guard) *Handler {
	return &Handler{
		service:   service,
		guard:     guard,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/stores/{storeID}/products", h.ListProducts)
		r.Post("/stores/{storeID}/products", h.CreateProduct)
		r.Get("/stores/{storeID}/categories", h.ListCategories)
		r.Post("/stores/{storeID}/categories", h.CreateCategory)
		r.Get("/stores/{storeID}/tags", h.ListTags)
		r.Post("/stores/{storeID}/tags", h.CreateTag)
	})
}

// authorize runs the guard and reports whether the handler may continue.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	storeID := chi.URLParam(r, "storeID")
	userID := middleware.GetUserID(r.Context())

	if _, err := h.guard.RequireAccess(r.Context(), userID, storeID); err != nil {
		store.WriteError(w, err)
		return "", false
	}
	return storeID, true
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	products, err := h.service.Products(r.Context(), storeID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{"products": products})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	categories, err := h.service.Categories(r.Context(), storeID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{"categories": categories})
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	tags, err := h.service.Tags(r.Context(), storeID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{"tags": tags})
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.CreateCategory(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "storeID"),
		req,
	)
	if err != nil {
		store.WriteError(w, err)
		return
	}

	core.Created(w, c)
}

func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if !h.decode(w, r, &req) {
		return
	}

	t, err := h.service.CreateTag(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "storeID"),
		req,
	)
	if err != nil {
		store.WriteError(w, err)
		return
	}

	core.Created(w, t)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.service.CreateProduct(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "storeID"),
		req,
	)
	if err != nil {
		store.WriteError(w, err)
		return
	}

	core.Created(w, p)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "Invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}
