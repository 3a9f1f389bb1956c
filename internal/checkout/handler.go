// AngelaMos | 2026
// handler.go

package checkout

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/middleware"
)

type StartRequest struct {
	Provider string `json:"provider" validate:"required,oneof=stripe paypal"`
	Coupon   string `json:"coupon" validate:"omitempty,max=64"`
}

type StartResponse struct {
	RedirectURL string `json:"redirect_url"`
	Reference   string `json:"reference"`
}

type ConfirmResponse struct {
	Status   string `json:"status"`
	Minted   int    `json:"minted"`
	Replayed bool   `json:"replayed"`
}

type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	verifiedOnly func(http.Handler) http.Handler,
) {
	r.Route("/checkout", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(verifiedOnly)

		r.Post("/", h.StartCart)
		r.Post("/product/{productID}", h.StartProduct)
		r.Get("/confirm", h.Confirm)
		r.Get("/cancel", h.Cancel)
	})
}

func (h *Handler) StartCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "Authentication required")
		return
	}

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	redirect, err := h.service.StartCart(r.Context(), userID, req.Coupon, req.Provider)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, StartResponse{
		RedirectURL: redirect.URL,
		Reference:   redirect.Reference,
	})
}

func (h *Handler) StartProduct(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "Authentication required")
		return
	}

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	productID := chi.URLParam(r, "productID")
	redirect, err := h.service.StartProduct(
		r.Context(),
		userID,
		productID,
		req.Coupon,
		req.Provider,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, StartResponse{
		RedirectURL: redirect.URL,
		Reference:   redirect.Reference,
	})
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "Authentication required")
		return
	}

	result, err := h.service.Confirm(r.Context(), userID, r.URL.Query())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ConfirmResponse{
		Status:   "fulfilled",
		Minted:   result.Minted,
		Replayed: result.Replayed,
	})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Cancel(r.Context(), userID); err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, map[string]string{"status": "cancelled"})
}
