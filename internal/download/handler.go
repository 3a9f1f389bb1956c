// AngelaMos | 2026
// handler.go

package download

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/middleware"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	verifiedOnly func(http.Handler) http.Handler,
) {
	r.Route("/downloads", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(verifiedOnly)
		r.Get("/{filename}", h.Download)
	})
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "Authentication required")
		return
	}

	filename := chi.URLParam(r, "filename")
	content, err := h.service.Grant(r.Context(), userID, filename)
	if err != nil {
		core.JSONError(w, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filename),
	)
	if _, err := io.Copy(w, content); err != nil {
		// Headers are already out; the entitlement stays consumed.
		h.logger.Warn("download stream interrupted",
			"file", filename,
			"user_id", userID,
			"error", err,
		)
	}
}
