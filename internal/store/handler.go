// AngelaMos | 2026
// handler.go

package store

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/storedeck/storefront/internal/core"
	"github.com/storedeck/storefront/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/stores", h.Overview)
		r.Post("/stores", h.Create)
		r.Get("/stores/{storeID}/access", h.Access)
		r.Get("/stores/{storeID}/members", h.ListMembers)
		r.Post("/stores/{storeID}/members", h.AddMember)
		r.Delete("/stores/{storeID}/members/{userID}", h.RemoveMember)
	})
}

// WriteError renders guard failures with their own message and status and
// falls back to core.JSONError for everything else.
func WriteError(w http.ResponseWriter, err error) {
	var accessErr *AccessError
	if errors.As(err, &accessErr) {
		core.Error(w, core.StatusFromError(accessErr.Err), accessErr.Message)
		return
	}
	core.JSONError(w, err)
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	overview, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, overview)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	store, err := h.service.CreateStore(r.Context(), userID, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, store)
}

func (h *Handler) Access(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	storeID := chi.URLParam(r, "storeID")

	access, err := h.service.RequireAccess(r.Context(), userID, storeID)
	if err != nil {
		WriteError(w, err)
		return
	}

	core.OK(w, ToAccessResponse(storeID, access))
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	storeID := chi.URLParam(r, "storeID")

	members, err := h.service.ListMembers(r.Context(), userID, storeID)
	if err != nil {
		WriteError(w, err)
		return
	}

	core.OK(w, map[string]any{"members": members})
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	storeID := chi.URLParam(r, "storeID")

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	membership, err := h.service.AddMember(r.Context(), userID, storeID, req)
	if err != nil {
		WriteError(w, err)
		return
	}

	core.Created(w, membership)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	storeID := chi.URLParam(r, "storeID")
	memberID := chi.URLParam(r, "userID")

	if err := h.service.RemoveMember(r.Context(), userID, storeID, memberID); err != nil {
		WriteError(w, err)
		return
	}

	core.NoContent(w)
}
