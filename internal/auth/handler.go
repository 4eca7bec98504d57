// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/storedeck/storefront/internal/core"
	"github.com/storedeck/storefront/internal/middleware"
	"github.com/storedeck/storefront/internal/session"
)

// Sessions is satisfied by *session.Resolver.
type Sessions interface {
	Start(w http.ResponseWriter, id session.Identity) error
	End(w http.ResponseWriter, r *http.Request) error
}

type Handler struct {
	service   *Service
	sessions  Sessions
	validator *validator.Validate
	logger    *slog.Logger
}

func NewHandler(service *Service, sessions Sessions, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:   service,
		sessions:  sessions,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
		})
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	u, err := h.service.Register(r.Context(), req)
	if err != nil {
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		h.logger.ErrorContext(r.Context(), "registration failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		core.Error(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	if err := h.sessions.Start(w, u.Identity()); err != nil {
		h.logger.ErrorContext(r.Context(), "start session after registration",
			"error", err,
			"user_id", u.ID,
		)
		core.Error(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.logger.InfoContext(r.Context(), "user registered", "user_id", u.ID)
	core.OK(w, newAuthResponse(u))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(w, core.UnauthorizedError(MessageInvalidCredentials))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if err := h.sessions.Start(w, u.Identity()); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, newAuthResponse(u))
}

// Logout always clears the cookie, with or without a live session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SuccessResponse{Success: true})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		core.Unauthorized(w, "")
		return
	}

	core.OK(w, MeResponse{User: id})
}
