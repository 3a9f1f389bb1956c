// AngelaMos | 2026
// handler.go

package cart

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.Show)
		r.Post("/items/{productID}", h.AddItem)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Delete("/items/{productID}/all", h.RemoveItemAll)
		r.Delete("/entries/{index}", h.RemoveEntry)
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "Authentication required")
		return
	}

	view, err := h.service.Render(r.Context(), userID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, view)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "Authentication required")
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.service.Add(r.Context(), userID, productID); err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, map[string]string{"status": "added"})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "Authentication required")
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.service.RemoveOne(r.Context(), userID, productID); err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, map[string]string{"status": "removed"})
}

func (h *Handler) RemoveItemAll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "Authentication required")
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.service.RemoveAll(r.Context(), userID, productID); err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, map[string]string{"status": "removed"})
}

func (h *Handler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "Authentication required")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		core.BadRequest(w, "Index must be an integer")
		return
	}

	if err := h.service.RemoveAt(r.Context(), userID, index); err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, map[string]string{"status": "removed"})
}
