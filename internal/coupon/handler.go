// AngelaMos | 2026
// handler.go

package coupon

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/promptforge/storefront/internal/catalog"
	"github.com/promptforge/storefront/internal/core"
)

type Handler struct {
	service   *Service
	catalog   *catalog.Service
	validator *validator.Validate
}

func NewHandler(service *Service, catalogSvc *catalog.Service) *Handler {
	return &Handler{
		service:   service,
		catalog:   catalogSvc,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/coupons/validate", h.ValidateCoupon)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/coupons", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListCoupons)
		r.Put("/", h.UpsertCoupon)
		r.Delete("/{code}", h.DeleteCoupon)
	})
}

type ValidateCouponRequest struct {
	Code      string `json:"code"       validate:"required,max=64"`
	ProductID string `json:"product_id" validate:"required"`
}

type ValidateCouponResponse struct {
	Valid      bool  `json:"valid"`
	Discount   int   `json:"discount"`
	FinalPrice int64 `json:"final_price"`
}

// ValidateCoupon previews the discounted price of one product. Unlike
// checkout, an unknown code is not an error here: the preview reports
// discount 0 so the storefront can show the undiscounted price inline.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req ValidateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	product, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.OK(w, ValidateCouponResponse{Valid: false})
			return
		}
		core.InternalServerError(w, err)
		return
	}

	discount := 0
	if d, resolveErr := h.service.Resolve(r.Context(), req.Code); resolveErr == nil {
		discount = d
	} else if !errors.Is(resolveErr, core.ErrNotFound) {
		core.InternalServerError(w, resolveErr)
		return
	}

	finalPrice := product.Price * int64(100-discount) / 100

	// Valid reports that the product can be priced; an unknown code is
	// not an error here, it previews at full price.
	core.OK(w, ValidateCouponResponse{
		Valid:      true,
		Discount:   discount,
		FinalPrice: finalPrice,
	})
}

type UpsertCouponRequest struct {
	Code     string `json:"code"     validate:"required,min=1,max=64"`
	Discount int    `json:"discount" validate:"required,gt=0,lte=100"`
}

type CouponResponse struct {
	Code     string `json:"code"`
	Discount int    `json:"discount"`
}

func (h *Handler) UpsertCoupon(w http.ResponseWriter, r *http.Request) {
	var req UpsertCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	coupon, err := h.service.Upsert(r.Context(), req.Code, req.Discount)
	if err != nil {
		if errors.Is(err, core.ErrInvalidDiscount) ||
			errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, err.Error())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, CouponResponse{Code: coupon.Code, Discount: coupon.Discount})
}

func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	responses := make([]CouponResponse, 0, len(coupons))
	for _, c := range coupons {
		responses = append(responses, CouponResponse{
			Code:     c.Code,
			Discount: c.Discount,
		})
	}

	core.OK(w, responses)
}

func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.service.Delete(r.Context(), code); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "coupon")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}
