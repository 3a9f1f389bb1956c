// AngelaMos | 2026
// repository.go

package entitlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/promptforge/storefront/internal/core"
)

type Repository interface {
	InsertIfAbsent(ctx context.Context, q core.DBTX, e *Entitlement) (bool, error)
	Claim(ctx context.Context, userID, file string) (*Entitlement, error)
	GetNewestByUserAndFile(ctx context.Context, userID, file string) (*Entitlement, error)
	ListByUser(ctx context.Context, userID string) ([]Entitlement, error)
	List(ctx context.Context, limit, offset int) ([]Entitlement, error)
	Count(ctx context.Context) (int, error)
	Stats(ctx context.Context) (*SalesStats, error)
}

// SalesStats aggregates the ledger for the admin console.
type SalesStats struct {
	Orders    int   `db:"orders"    json:"orders"`
	Revenue   int64 `db:"revenue"   json:"revenue"`
	Downloads int   `db:"downloads" json:"downloads"`
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// InsertIfAbsent mints an entitlement unless the same confirmation
// already minted one. The conflict target is the unique triple
// (user_id, file, confirmation_id); a duplicate is not an error, it
// reports false so callers skip side effects tied to the first insert.
func (r *repository) InsertIfAbsent(
	ctx context.Context,
	q core.DBTX,
	e *Entitlement,
) (bool, error) {
	query := `
		INSERT INTO entitlements
			(id, user_id, email, file, product_title, price_paid,
			 confirmation_id, transaction_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, file, confirmation_id) DO NOTHING
		RETURNING created_at`

	err := q.GetContext(ctx, e, query,
		e.ID,
		e.UserID,
		e.Email,
		e.File,
		e.ProductTitle,
		e.PricePaid,
		e.ConfirmationID,
		e.TransactionID,
		e.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert entitlement: %w", err)
	}

	return true, nil
}

// Claim consumes one live entitlement for the file in a single
// conditional update. Concurrent claims race on the same rows; the
// subquery locks one unconsumed row and the update flips it, so exactly
// one caller wins per remaining entitlement.
func (r *repository) Claim(ctx context.Context, userID, file string) (*Entitlement, error) {
	query := `
		UPDATE entitlements
		SET downloaded = true, downloaded_at = NOW()
		WHERE id = (
			SELECT id FROM entitlements
			WHERE user_id = $1
			  AND file = $2
			  AND downloaded = false
			  AND expires_at > NOW()
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, user_id, email, file, product_title, price_paid,
		          confirmation_id, transaction_id, created_at, expires_at,
		          downloaded, downloaded_at`

	var e Entitlement
	err := r.db.GetContext(ctx, &e, query, userID, file)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("claim entitlement: %w", err)
	}

	return &e, nil
}

func (r *repository) GetNewestByUserAndFile(
	ctx context.Context,
	userID, file string,
) (*Entitlement, error) {
	query := `
		SELECT id, user_id, email, file, product_title, price_paid,
		       confirmation_id, transaction_id, created_at, expires_at,
		       downloaded, downloaded_at
		FROM entitlements
		WHERE user_id = $1 AND file = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var e Entitlement
	err := r.db.GetContext(ctx, &e, query, userID, file)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get entitlement: %w", err)
	}

	return &e, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Entitlement, error) {
	query := `
		SELECT id, user_id, email, file, product_title, price_paid,
		       confirmation_id, transaction_id, created_at, expires_at,
		       downloaded, downloaded_at
		FROM entitlements
		WHERE user_id = $1
		ORDER BY created_at DESC`

	entitlements := []Entitlement{}
	if err := r.db.SelectContext(ctx, &entitlements, query, userID); err != nil {
		return nil, fmt.Errorf("list entitlements: %w", err)
	}

	return entitlements, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Entitlement, error) {
	query := `
		SELECT id, user_id, email, file, product_title, price_paid,
		       confirmation_id, transaction_id, created_at, expires_at,
		       downloaded, downloaded_at
		FROM entitlements
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	entitlements := []Entitlement{}
	if err := r.db.SelectContext(ctx, &entitlements, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list entitlements: %w", err)
	}

	return entitlements, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM entitlements")
	if err != nil {
		return 0, fmt.Errorf("count entitlements: %w", err)
	}
	return count, nil
}

func (r *repository) Stats(ctx context.Context) (*SalesStats, error) {
	query := `
		SELECT COUNT(*) AS orders,
		       COALESCE(SUM(price_paid), 0) AS revenue,
		       COUNT(*) FILTER (WHERE downloaded) AS downloads
		FROM entitlements`

	var stats SalesStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("sales stats: %w", err)
	}

	return &stats, nil
}
