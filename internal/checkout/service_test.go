// AngelaMos | 2026
// service_test.go

package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/fulfillment"
	"github.com/promptforge/storefront/internal/payment"
	"github.com/promptforge/storefront/internal/pricing"
	"github.com/promptforge/storefront/internal/session"
)

type fakeSessions struct {
	states map[string]*session.State
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{states: make(map[string]*session.State)}
}

func (f *fakeSessions) Get(_ context.Context, userID string) (*session.State, error) {
	stored, ok := f.states[userID]
	if !ok {
		return &session.State{}, nil
	}
	state := *stored
	if stored.Pending != nil {
		pending := *stored.Pending
		state.Pending = &pending
	}
	return &state, nil
}

func (f *fakeSessions) Save(_ context.Context, userID string, state *session.State) error {
	saved := *state
	if state.Pending != nil {
		pending := *state.Pending
		saved.Pending = &pending
	}
	f.states[userID] = &saved
	return nil
}

type fakeProvider struct {
	name      string
	confirmed bool
	txnID     string
	err       error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Initiate(
	_ context.Context,
	_ *pricing.Quote,
	_, _ string,
) (*payment.Redirect, error) {
	return &payment.Redirect{URL: "https://pay.test/session", Reference: "ref_1"}, nil
}

func (p *fakeProvider) Confirm(
	_ context.Context,
	_ string,
	_ url.Values,
) (*payment.Outcome, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &payment.Outcome{Confirmed: p.confirmed, TransactionID: p.txnID}, nil
}

type fakeFulfiller struct {
	calls  int
	result *fulfillment.Result
	err    error
}

func (f *fakeFulfiller) Fulfill(
	_ context.Context,
	_ fulfillment.Buyer,
	_, _ string,
	_ *pricing.Quote,
) (*fulfillment.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeBuyers struct{}

func (fakeBuyers) Email(_ context.Context, _ string) (string, error) {
	return "buyer@shop.test", nil
}

func pendingState(fromCart bool) *session.State {
	return &session.State{
		Cart: []string{"p1", "p1"},
		Pending: &session.PendingCheckout{
			Provider:  "stripe",
			Reference: "cs_1",
			Quote: pricing.Quote{
				Items: []pricing.LineItem{
					{ProductID: "p1", Title: "Pack", File: "pack.zip", UnitPrice: 900, Quantity: 2},
				},
				Total:    1800,
				Currency: "EUR",
			},
			Status:    string(fulfillment.StatusPendingPayment),
			FromCart:  fromCart,
			CreatedAt: time.Now(),
		},
	}
}

func newConfirmService(
	sessions SessionStore,
	provider payment.Provider,
	fulfiller Fulfiller,
) *Service {
	return NewService(
		sessions,
		nil,
		nil,
		map[string]payment.Provider{"stripe": provider},
		fulfiller,
		fakeBuyers{},
		"https://shop.test",
		slog.New(slog.DiscardHandler),
	)
}

func TestConfirmUnconfirmedKeepsPendingAndCart(t *testing.T) {
	sessions := newFakeSessions()
	sessions.states["u1"] = pendingState(true)
	fulfiller := &fakeFulfiller{}
	svc := newConfirmService(sessions, &fakeProvider{name: "stripe", confirmed: false}, fulfiller)

	_, err := svc.Confirm(context.Background(), "u1", url.Values{})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAYMENT_NOT_CONFIRMED", appErr.Code)
	assert.Zero(t, fulfiller.calls)

	stored := sessions.states["u1"]
	require.NotNil(t, stored.Pending, "pending survives a failed confirmation for retry")
	assert.Equal(t, []string{"p1", "p1"}, stored.Cart)
}

func TestConfirmProviderErrorKeepsPending(t *testing.T) {
	sessions := newFakeSessions()
	sessions.states["u1"] = pendingState(true)
	fulfiller := &fakeFulfiller{}
	svc := newConfirmService(
		sessions,
		&fakeProvider{name: "stripe", err: errors.New("gateway timeout")},
		fulfiller,
	)

	_, err := svc.Confirm(context.Background(), "u1", url.Values{})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAYMENT_NOT_CONFIRMED", appErr.Code)
	assert.Zero(t, fulfiller.calls)
	require.NotNil(t, sessions.states["u1"].Pending)
}

func TestConfirmCartClearedOnlyAfterDurableGrant(t *testing.T) {
	sessions := newFakeSessions()
	sessions.states["u1"] = pendingState(true)
	fulfiller := &fakeFulfiller{err: core.ErrEntitlementPersistence}
	provider := &fakeProvider{name: "stripe", confirmed: true, txnID: "txn_1"}
	svc := newConfirmService(sessions, provider, fulfiller)

	_, err := svc.Confirm(context.Background(), "u1", url.Values{})
	require.Error(t, err)
	assert.Equal(t, 1, fulfiller.calls)

	stored := sessions.states["u1"]
	require.NotNil(t, stored.Pending, "pending kept when fulfillment fails")
	assert.Equal(t, []string{"p1", "p1"}, stored.Cart, "cart intact until entitlements are durable")

	fulfiller.err = nil
	fulfiller.result = &fulfillment.Result{Minted: 1}

	result, err := svc.Confirm(context.Background(), "u1", url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Minted)

	stored = sessions.states["u1"]
	assert.Nil(t, stored.Pending)
	assert.Empty(t, stored.Cart)
}

func TestConfirmSingleProductLeavesCart(t *testing.T) {
	sessions := newFakeSessions()
	sessions.states["u1"] = pendingState(false)
	fulfiller := &fakeFulfiller{result: &fulfillment.Result{Minted: 1}}
	provider := &fakeProvider{name: "stripe", confirmed: true, txnID: "txn_1"}
	svc := newConfirmService(sessions, provider, fulfiller)

	_, err := svc.Confirm(context.Background(), "u1", url.Values{})
	require.NoError(t, err)

	stored := sessions.states["u1"]
	assert.Nil(t, stored.Pending)
	assert.Equal(t, []string{"p1", "p1"}, stored.Cart)
}

func TestConfirmWithoutPending(t *testing.T) {
	sessions := newFakeSessions()
	svc := newConfirmService(sessions, &fakeProvider{name: "stripe"}, &fakeFulfiller{})

	_, err := svc.Confirm(context.Background(), "u1", url.Values{})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAYMENT_NOT_CONFIRMED", appErr.Code)
}

func TestConfirmTwiceSettlesOnce(t *testing.T) {
	sessions := newFakeSessions()
	sessions.states["u1"] = pendingState(true)
	fulfiller := &fakeFulfiller{result: &fulfillment.Result{Minted: 1}}
	provider := &fakeProvider{name: "stripe", confirmed: true, txnID: "txn_1"}
	svc := newConfirmService(sessions, provider, fulfiller)

	_, err := svc.Confirm(context.Background(), "u1", url.Values{})
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), "u1", url.Values{})
	require.Error(t, err)
	assert.Equal(t, 1, fulfiller.calls)
}

func TestCancelClearsPendingOnly(t *testing.T) {
	sessions := newFakeSessions()
	sessions.states["u1"] = pendingState(true)
	svc := newConfirmService(sessions, &fakeProvider{name: "stripe"}, &fakeFulfiller{})

	require.NoError(t, svc.Cancel(context.Background(), "u1"))

	stored := sessions.states["u1"]
	assert.Nil(t, stored.Pending)
	assert.Equal(t, []string{"p1", "p1"}, stored.Cart)
}

func TestStartProductUnknownProvider(t *testing.T) {
	sessions := newFakeSessions()
	svc := newConfirmService(sessions, &fakeProvider{name: "stripe"}, &fakeFulfiller{})

	_, err := svc.StartProduct(context.Background(), "u1", "p1", "", "skrill")

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNKNOWN_PROVIDER", appErr.Code)
}
