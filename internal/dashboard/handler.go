// AngelaMos | 2026
// handler.go

package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/storedeck/storefront/internal/catalog"
	"github.com/storedeck/storefront/internal/core"
	"github.com/storedeck/storefront/internal/middleware"
	"github.com/storedeck/storefront/internal/session"
	"github.com/storedeck/storefront/internal/store"
)

const LoginPath = "/login"

const (
	panelError   = "error"
	panelWarning = "warning"
)

// Stores is satisfied by *store.Service.
type Stores interface {
	Dashboard(ctx context.Context, userID string) (*store.Overview, error)
	RequireAccess(ctx context.Context, userID, storeID string) (store.Access, error)
	GetStore(ctx context.Context, id string) (*store.Store, error)
}

// Catalog is satisfied by *catalog.Service.
type Catalog interface {
	Products(ctx context.Context, storeID string) ([]catalog.ProductListing, error)
	Categories(ctx context.Context, storeID string) ([]catalog.Category, error)
	Tags(ctx context.Context, storeID string) ([]catalog.Tag, error)
}

// Panel is an inline message box; Kind is "error" (red) or "warning" (yellow).
type Panel struct {
	Kind    string
	Message string
}

type Page struct {
	Title   string
	AppName string
	User    *session.Identity
	Panel   *Panel
}

type DashboardPage struct {
	Page
	Overview *store.Overview
}

type ProductsPage struct {
	Page
	Store      *store.Store
	Role       string
	Products   []catalog.ProductListing
	Categories []catalog.Category
	Tags       []catalog.Tag
}

type Handler struct {
	stores   Stores
	catalog  Catalog
	renderer *Renderer
	appName  string
	logger   *slog.Logger
}

func NewHandler(
	stores Stores,
	catalog Catalog,
	renderer *Renderer,
	appName string,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		stores:   stores,
		catalog:  catalog,
		renderer: renderer,
		appName:  appName,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, resolver middleware.IdentityResolver) {
	r.Handle("/static/*", StaticHandler())
	r.Get(LoginPath, h.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePageSession(resolver, LoginPath))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
		})
		r.Get("/dashboard", h.Dashboard)
		r.Get("/dashboard/stores/{storeID}/products", h.Products)
	})
}

func (h *Handler) page(r *http.Request, title string) Page {
	p := Page{Title: title, AppName: h.appName}
	if id, ok := middleware.GetIdentity(r.Context()); ok {
		p.User = &id
	}
	return p
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "login", h.page(r, "Sign in"))
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := DashboardPage{Page: h.page(r, "Dashboard")}

	overview, err := h.stores.Dashboard(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "load dashboard",
			"error", err,
			"user_id", middleware.GetUserID(r.Context()),
		)
		data.Panel = &Panel{Kind: panelError, Message: "Unable to load your stores"}
		h.renderer.Render(w, r, http.StatusInternalServerError, "dashboard", data)
		return
	}

	data.Overview = overview
	h.renderer.Render(w, r, http.StatusOK, "dashboard", data)
}

// Products renders the product table for one store. Guard failures render
// an inline panel with status 200; the catalog reads start only after the
// guard has succeeded.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	storeID := chi.URLParam(r, "storeID")
	userID := middleware.GetUserID(ctx)
	data := ProductsPage{Page: h.page(r, "Products")}

	access, err := h.stores.RequireAccess(ctx, userID, storeID)
	if err != nil {
		var accessErr *store.AccessError
		if !errors.As(err, &accessErr) {
			h.fail(w, r, data, "require access", err)
			return
		}

		kind := panelError
		if errors.Is(err, core.ErrNotFound) {
			kind = panelWarning
		}
		data.Panel = &Panel{Kind: kind, Message: accessErr.Message}
		h.renderer.Render(w, r, http.StatusOK, "products", data)
		return
	}
	data.Role = access.RoleName()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := h.stores.GetStore(gctx, storeID)
		if err != nil {
			return err
		}
		data.Store = s
		return nil
	})
	g.Go(func() error {
		products, err := h.catalog.Products(gctx, storeID)
		data.Products = products
		return err
	})
	g.Go(func() error {
		categories, err := h.catalog.Categories(gctx, storeID)
		data.Categories = categories
		return err
	})
	g.Go(func() error {
		tags, err := h.catalog.Tags(gctx, storeID)
		data.Tags = tags
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			data.Panel = &Panel{Kind: panelWarning, Message: store.MessageStoreNotFound}
			h.renderer.Render(w, r, http.StatusOK, "products", data)
			return
		}
		h.fail(w, r, data, "load products page", err)
		return
	}

	data.Title = data.Store.Name + " products"
	h.renderer.Render(w, r, http.StatusOK, "products", data)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, data ProductsPage, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		"error", err,
		"store_id", chi.URLParam(r, "storeID"),
		"user_id", middleware.GetUserID(r.Context()),
	)
	data.Panel = &Panel{Kind: panelError, Message: "Unable to load this store"}
	h.renderer.Render(w, r, http.StatusInternalServerError, "products", data)
}
