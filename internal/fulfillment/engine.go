// AngelaMos | 2026
// engine.go

package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/entitlement"
	"github.com/promptforge/storefront/internal/pricing"
	"github.com/promptforge/storefront/internal/receipt"
)

// Buyer identifies who a confirmed payment fulfills for.
type Buyer struct {
	ID    string
	Email string
}

// Result reports what one fulfillment pass actually did.
type Result struct {
	Minted   int
	Replayed bool
}

// Engine turns a confirmed payment into durable entitlements. Fulfill is
// safe to call any number of times with the same confirmation id; the
// ledger's unique triple absorbs replays.
type Engine struct {
	run      func(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	ledger   entitlement.Repository
	receipts receipt.Issuer
	window   time.Duration
	logger   *slog.Logger
}

func NewEngine(
	db *sqlx.DB,
	ledger entitlement.Repository,
	receipts receipt.Issuer,
	window time.Duration,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		run: func(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
			return core.InTx(ctx, db, fn)
		},
		ledger:   ledger,
		receipts: receipts,
		window:   window,
		logger:   logger,
	}
}

// Fulfill mints one entitlement per distinct file in the quote, all in
// one transaction. Receipts go out after commit and only for rows this
// call inserted. A persistence failure here means money moved but goods
// did not, so it is wrapped in the paid-but-unfulfilled error and logged
// loudly with the confirmation id for manual recovery.
func (e *Engine) Fulfill(
	ctx context.Context,
	buyer Buyer,
	confirmationID string,
	transactionID string,
	quote *pricing.Quote,
) (*Result, error) {
	now := time.Now()
	expiresAt := now.Add(e.window)

	minted := make([]entitlement.Entitlement, 0, len(quote.Items))

	err := e.run(ctx, func(tx *sqlx.Tx) error {
		for _, item := range quote.Items {
			ent := entitlement.Entitlement{
				ID:             uuid.New().String(),
				UserID:         buyer.ID,
				Email:          buyer.Email,
				File:           item.File,
				ProductTitle:   item.Title,
				PricePaid:      item.UnitPrice,
				ConfirmationID: confirmationID,
				TransactionID:  transactionID,
				ExpiresAt:      expiresAt,
			}

			inserted, insErr := e.ledger.InsertIfAbsent(ctx, tx, &ent)
			if insErr != nil {
				return insErr
			}
			if inserted {
				minted = append(minted, ent)
			}
		}
		return nil
	})
	if err != nil {
		e.logger.Error("entitlement persistence failed after confirmed payment",
			"confirmation_id", confirmationID,
			"user_id", buyer.ID,
			"error", err,
		)
		return nil, fmt.Errorf(
			"fulfill confirmation %s: %w: %w",
			confirmationID,
			core.ErrEntitlementPersistence,
			err,
		)
	}

	for _, ent := range minted {
		rcpt := receipt.Receipt{
			Email:        ent.Email,
			ProductTitle: ent.ProductTitle,
			PricePaid:    ent.PricePaid,
			Currency:     quote.Currency,
			IssuedAt:     now,
		}
		if issueErr := e.receipts.Issue(ctx, rcpt); issueErr != nil {
			e.logger.Warn("receipt delivery failed",
				"confirmation_id", confirmationID,
				"email", ent.Email,
				"error", issueErr,
			)
		}
	}

	return &Result{
		Minted:   len(minted),
		Replayed: len(minted) == 0 && len(quote.Items) > 0,
	}, nil
}
