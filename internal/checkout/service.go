// AngelaMos | 2026
// service.go

package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/promptforge/storefront/internal/cart"
	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/fulfillment"
	"github.com/promptforge/storefront/internal/payment"
	"github.com/promptforge/storefront/internal/pricing"
	"github.com/promptforge/storefront/internal/session"
)

// BuyerSource resolves the buyer's email for fulfillment and receipts.
type BuyerSource interface {
	Email(ctx context.Context, userID string) (string, error)
}

// SessionStore holds the per-user state the handshake reads and writes.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*session.State, error)
	Save(ctx context.Context, userID string, state *session.State) error
}

// Fulfiller settles a confirmed payment into durable entitlements.
type Fulfiller interface {
	Fulfill(
		ctx context.Context,
		buyer fulfillment.Buyer,
		confirmationID string,
		transactionID string,
		quote *pricing.Quote,
	) (*fulfillment.Result, error)
}

var (
	_ SessionStore = (*session.Store)(nil)
	_ Fulfiller    = (*fulfillment.Engine)(nil)
)

// Service runs the initiate/confirm checkout handshake. The priced quote
// is snapshotted into the session at initiate time; confirm fulfills that
// snapshot, so catalog edits between the two steps cannot change what the
// buyer paid for.
type Service struct {
	sessions  SessionStore
	carts     *cart.Service
	pricer    *pricing.Engine
	providers map[string]payment.Provider
	fulfiller Fulfiller
	buyers    BuyerSource
	baseURL   string
	logger    *slog.Logger
}

func NewService(
	sessions SessionStore,
	carts *cart.Service,
	pricer *pricing.Engine,
	providers map[string]payment.Provider,
	fulfiller Fulfiller,
	buyers BuyerSource,
	baseURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		sessions:  sessions,
		carts:     carts,
		pricer:    pricer,
		providers: providers,
		fulfiller: fulfiller,
		buyers:    buyers,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// StartCart initiates payment for the whole cart.
func (s *Service) StartCart(
	ctx context.Context,
	userID, couponCode, providerName string,
) (*payment.Redirect, error) {
	contents, err := s.carts.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.start(ctx, userID, contents, couponCode, providerName, true)
}

// StartProduct initiates payment for a single product, bypassing the cart.
func (s *Service) StartProduct(
	ctx context.Context,
	userID, productID, couponCode, providerName string,
) (*payment.Redirect, error) {
	return s.start(ctx, userID, []string{productID}, couponCode, providerName, false)
}

func (s *Service) start(
	ctx context.Context,
	userID string,
	contents []string,
	couponCode, providerName string,
	fromCart bool,
) (*payment.Redirect, error) {
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, core.NewAppError(
			core.ErrInvalidInput,
			fmt.Sprintf("Unknown payment provider: %s", providerName),
			400,
			"UNKNOWN_PROVIDER",
		)
	}

	quote, err := s.pricer.Quote(ctx, contents, couponCode)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidCoupon):
			return nil, core.InvalidCouponError(couponCode)
		case errors.Is(err, core.ErrEmptyCart):
			return nil, core.EmptyCartError()
		}
		return nil, err
	}

	redirect, err := provider.Initiate(
		ctx,
		quote,
		s.baseURL+"/v1/checkout/confirm",
		s.baseURL+"/v1/checkout/cancel",
	)
	if err != nil {
		s.logger.Error("payment initiation failed",
			"provider", provider.Name(),
			"user_id", userID,
			"error", err,
		)
		return nil, core.PaymentInitiationError()
	}

	state, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	state.Pending = &session.PendingCheckout{
		Provider:  provider.Name(),
		Reference: redirect.Reference,
		Quote:     *quote,
		Status:    string(fulfillment.StatusPendingPayment),
		FromCart:  fromCart,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Save(ctx, userID, state); err != nil {
		return nil, err
	}

	return redirect, nil
}

// Confirm settles the pending checkout and fulfills it. The pending
// snapshot survives a failed confirmation so the buyer can retry; it is
// cleared, along with the cart when the checkout came from it, only
// after every entitlement is durable.
func (s *Service) Confirm(
	ctx context.Context,
	userID string,
	params url.Values,
) (*fulfillment.Result, error) {
	state, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state.Pending == nil {
		return nil, core.PaymentNotConfirmedError()
	}
	pending := state.Pending

	if !fulfillment.CanTransition(
		fulfillment.Status(pending.Status),
		fulfillment.StatusPaid,
	) {
		return nil, core.PaymentNotConfirmedError()
	}

	provider, ok := s.providers[pending.Provider]
	if !ok {
		return nil, core.PaymentNotConfirmedError()
	}

	outcome, err := provider.Confirm(ctx, pending.Reference, params)
	if err != nil {
		s.logger.Error("payment confirmation failed",
			"provider", pending.Provider,
			"reference", pending.Reference,
			"error", err,
		)
		return nil, core.PaymentNotConfirmedError()
	}
	if !outcome.Confirmed {
		return nil, core.PaymentNotConfirmedError()
	}
	pending.Status = string(fulfillment.StatusPaid)

	email, err := s.buyers.Email(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("confirm checkout: %w", err)
	}

	result, err := s.fulfiller.Fulfill(
		ctx,
		fulfillment.Buyer{ID: userID, Email: email},
		pending.Reference,
		outcome.TransactionID,
		&pending.Quote,
	)
	if err != nil {
		return nil, err
	}
	pending.Status = string(fulfillment.StatusEntitled)

	if pending.FromCart {
		state.Cart = nil
	}
	state.Pending = nil
	if err := s.sessions.Save(ctx, userID, state); err != nil {
		// Entitlements are durable; a stale session is recoverable.
		s.logger.Warn("session cleanup after fulfillment failed",
			"user_id", userID,
			"error", err,
		)
	}

	return result, nil
}

// Cancel abandons the pending checkout. The cart is left untouched.
func (s *Service) Cancel(ctx context.Context, userID string) error {
	state, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	if state.Pending == nil {
		return nil
	}

	state.Pending = nil
	return s.sessions.Save(ctx, userID, state)
}
