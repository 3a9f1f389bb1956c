// AngelaMos | 2026
// handler.go

package entitlement

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
	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.ListOrders)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/orders", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)
		r.Get("/", h.ListAllOrders)
	})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "Authentication required")
		return
	}

	orders, err := h.service.OrdersForUser(r.Context(), userID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, orders)
}

func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	orders, total, err := h.service.AllOrders(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, orders, page, pageSize, total)
}
