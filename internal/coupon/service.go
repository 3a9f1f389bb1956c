// AngelaMos | 2026
// service.go

package coupon

import (
	"context"
	"fmt"
	"strings"

	"github.com/promptforge/storefront/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Normalize is applied to every code before lookup and storage, so
// " save10 " and "SAVE10" are the same coupon.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Resolve returns the discount percent for a code, or core.ErrNotFound.
func (s *Service) Resolve(ctx context.Context, code string) (int, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return 0, fmt.Errorf("resolve coupon: %w", core.ErrNotFound)
	}

	coupon, err := s.repo.GetByCode(ctx, normalized)
	if err != nil {
		return 0, err
	}

	return coupon.Discount, nil
}

func (s *Service) Upsert(
	ctx context.Context,
	code string,
	discount int,
) (*Coupon, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return nil, fmt.Errorf(
			"upsert coupon: code is required: %w",
			core.ErrInvalidInput,
		)
	}

	if discount <= 0 || discount > 100 {
		return nil, fmt.Errorf(
			"upsert coupon: discount %d out of range (0,100]: %w",
			discount,
			core.ErrInvalidDiscount,
		)
	}

	coupon := &Coupon{
		Code:     normalized,
		Discount: discount,
	}

	if err := s.repo.Upsert(ctx, coupon); err != nil {
		return nil, err
	}

	return coupon, nil
}

func (s *Service) Delete(ctx context.Context, code string) error {
	return s.repo.Delete(ctx, Normalize(code))
}

func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	return s.repo.List(ctx)
}
