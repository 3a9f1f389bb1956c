// AngelaMos | 2026
// repository.go

package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/promptforge/storefront/internal/core"
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	Upsert(ctx context.Context, coupon *Coupon) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]Coupon, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) GetByCode(
	ctx context.Context,
	code string,
) (*Coupon, error) {
	query := `
		SELECT code, discount, created_at, updated_at
		FROM coupons
		WHERE code = $1`

	var coupon Coupon
	err := r.db.GetContext(ctx, &coupon, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get coupon: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}

	return &coupon, nil
}

func (r *repository) Upsert(ctx context.Context, coupon *Coupon) error {
	query := `
		INSERT INTO coupons (code, discount)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE
		SET discount = EXCLUDED.discount, updated_at = NOW()
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, coupon, query, coupon.Code, coupon.Discount)
	if err != nil {
		return fmt.Errorf("upsert coupon: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, code string) error {
	query := `DELETE FROM coupons WHERE code = $1`

	result, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete coupon: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(ctx context.Context) ([]Coupon, error) {
	query := `
		SELECT code, discount, created_at, updated_at
		FROM coupons
		ORDER BY code`

	var coupons []Coupon
	if err := r.db.SelectContext(ctx, &coupons, query); err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	return coupons, nil
}
