// AngelaMos | 2026
// service.go

package entitlement

import (
	"context"
	"time"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type OrderResponse struct {
	ID             string     `json:"id"`
	ProductTitle   string     `json:"product_title"`
	File           string     `json:"file"`
	PricePaid      int64      `json:"price_paid"`
	ConfirmationID string     `json:"confirmation_id"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	DownloadedAt   *time.Time `json:"downloaded_at,omitempty"`
}

type AdminOrderResponse struct {
	OrderResponse
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func toOrderResponse(e *Entitlement, now time.Time) OrderResponse {
	return OrderResponse{
		ID:             e.ID,
		ProductTitle:   e.ProductTitle,
		File:           e.File,
		PricePaid:      e.PricePaid,
		ConfirmationID: e.ConfirmationID,
		Status:         e.StatusAt(now),
		CreatedAt:      e.CreatedAt,
		ExpiresAt:      e.ExpiresAt,
		DownloadedAt:   e.DownloadedAt,
	}
}

func (s *Service) OrdersForUser(ctx context.Context, userID string) ([]OrderResponse, error) {
	entitlements, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	orders := make([]OrderResponse, 0, len(entitlements))
	for i := range entitlements {
		orders = append(orders, toOrderResponse(&entitlements[i], now))
	}

	return orders, nil
}

func (s *Service) AllOrders(
	ctx context.Context,
	limit, offset int,
) ([]AdminOrderResponse, int, error) {
	entitlements, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	orders := make([]AdminOrderResponse, 0, len(entitlements))
	for i := range entitlements {
		orders = append(orders, AdminOrderResponse{
			OrderResponse: toOrderResponse(&entitlements[i], now),
			UserID:        entitlements[i].UserID,
			Email:         entitlements[i].Email,
		})
	}

	return orders, total, nil
}

func (s *Service) Stats(ctx context.Context) (*SalesStats, error) {
	return s.repo.Stats(ctx)
}
