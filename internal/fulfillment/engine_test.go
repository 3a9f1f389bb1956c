// AngelaMos | 2026
// engine_test.go

package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/entitlement"
	"github.com/promptforge/storefront/internal/pricing"
	"github.com/promptforge/storefront/internal/receipt"
)

type memoryLedger struct {
	rows    map[string]*entitlement.Entitlement
	insErr  error
	inserts int
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{rows: make(map[string]*entitlement.Entitlement)}
}

func ledgerKey(userID, file, confirmationID string) string {
	return userID + "|" + file + "|" + confirmationID
}

func (m *memoryLedger) InsertIfAbsent(
	_ context.Context,
	_ core.DBTX,
	e *entitlement.Entitlement,
) (bool, error) {
	if m.insErr != nil {
		return false, m.insErr
	}

	key := ledgerKey(e.UserID, e.File, e.ConfirmationID)
	if _, exists := m.rows[key]; exists {
		return false, nil
	}

	row := *e
	row.CreatedAt = time.Now()
	m.rows[key] = &row
	m.inserts++
	return true, nil
}

func (m *memoryLedger) Claim(
	_ context.Context,
	_, _ string,
) (*entitlement.Entitlement, error) {
	return nil, core.ErrNotFound
}

func (m *memoryLedger) GetNewestByUserAndFile(
	_ context.Context,
	_, _ string,
) (*entitlement.Entitlement, error) {
	return nil, core.ErrNotFound
}

func (m *memoryLedger) ListByUser(
	_ context.Context,
	_ string,
) ([]entitlement.Entitlement, error) {
	return nil, nil
}

func (m *memoryLedger) List(
	_ context.Context,
	_, _ int,
) ([]entitlement.Entitlement, error) {
	return nil, nil
}

func (m *memoryLedger) Count(_ context.Context) (int, error) {
	return len(m.rows), nil
}

func (m *memoryLedger) Stats(_ context.Context) (*entitlement.SalesStats, error) {
	return &entitlement.SalesStats{Orders: len(m.rows)}, nil
}

type recordingIssuer struct {
	issued []receipt.Receipt
}

func (r *recordingIssuer) Issue(_ context.Context, rcpt receipt.Receipt) error {
	r.issued = append(r.issued, rcpt)
	return nil
}

func newTestEngine(ledger entitlement.Repository, issuer receipt.Issuer) *Engine {
	e := NewEngine(
		nil,
		ledger,
		issuer,
		168*time.Hour,
		slog.New(slog.DiscardHandler),
	)
	e.run = func(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
		return fn(nil)
	}
	return e
}

func testQuote() *pricing.Quote {
	return &pricing.Quote{
		Items: []pricing.LineItem{
			{ProductID: "p1", Title: "Pack A", File: "a.zip", UnitPrice: 900, Quantity: 1},
			{ProductID: "p2", Title: "Pack B", File: "b.zip", UnitPrice: 450, Quantity: 2},
		},
		Total:    1800,
		Currency: "EUR",
	}
}

func TestFulfillMintsPerFile(t *testing.T) {
	ledger := newMemoryLedger()
	issuer := &recordingIssuer{}
	engine := newTestEngine(ledger, issuer)

	buyer := Buyer{ID: "u1", Email: "u1@example.com"}
	result, err := engine.Fulfill(context.Background(), buyer, "cs_123", "txn_1", testQuote())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Minted)
	assert.False(t, result.Replayed)
	assert.Equal(t, 2, ledger.inserts)
	require.Len(t, issuer.issued, 2)
	assert.Equal(t, "Pack A", issuer.issued[0].ProductTitle)
	assert.Equal(t, int64(900), issuer.issued[0].PricePaid)
	assert.Equal(t, "u1@example.com", issuer.issued[0].Email)
}

func TestFulfillReplaySameConfirmation(t *testing.T) {
	ledger := newMemoryLedger()
	issuer := &recordingIssuer{}
	engine := newTestEngine(ledger, issuer)

	buyer := Buyer{ID: "u1", Email: "u1@example.com"}
	_, err := engine.Fulfill(context.Background(), buyer, "cs_123", "txn_1", testQuote())
	require.NoError(t, err)

	result, err := engine.Fulfill(context.Background(), buyer, "cs_123", "txn_1", testQuote())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Minted)
	assert.True(t, result.Replayed)
	assert.Equal(t, 2, ledger.inserts)
	assert.Len(t, issuer.issued, 2, "receipts only for first fulfillment")
}

func TestFulfillNewConfirmationMintsAgain(t *testing.T) {
	ledger := newMemoryLedger()
	issuer := &recordingIssuer{}
	engine := newTestEngine(ledger, issuer)

	buyer := Buyer{ID: "u1", Email: "u1@example.com"}
	_, err := engine.Fulfill(context.Background(), buyer, "cs_123", "txn_1", testQuote())
	require.NoError(t, err)

	result, err := engine.Fulfill(context.Background(), buyer, "cs_456", "txn_2", testQuote())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Minted)
	assert.Equal(t, 4, ledger.inserts)
}

func TestFulfillPersistenceFailureIsLoud(t *testing.T) {
	ledger := newMemoryLedger()
	ledger.insErr = fmt.Errorf("insert entitlement: %w", errors.New("connection reset"))
	issuer := &recordingIssuer{}
	engine := newTestEngine(ledger, issuer)

	buyer := Buyer{ID: "u1", Email: "u1@example.com"}
	_, err := engine.Fulfill(context.Background(), buyer, "cs_123", "txn_1", testQuote())

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEntitlementPersistence)
	assert.Contains(t, err.Error(), "cs_123")
	assert.Empty(t, issuer.issued, "no receipts when nothing is durable")
}

func TestFulfillSetsExpiryWindow(t *testing.T) {
	ledger := newMemoryLedger()
	engine := newTestEngine(ledger, &recordingIssuer{})

	before := time.Now()
	buyer := Buyer{ID: "u1", Email: "u1@example.com"}
	_, err := engine.Fulfill(context.Background(), buyer, "cs_123", "txn_1", testQuote())
	require.NoError(t, err)

	for _, row := range ledger.rows {
		expected := before.Add(168 * time.Hour)
		assert.WithinDuration(t, expected, row.ExpiresAt, 5*time.Second)
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPendingPayment, StatusPaid))
	assert.True(t, CanTransition(StatusPaid, StatusEntitled))
	assert.True(t, CanTransition(StatusEntitled, StatusDownloaded))
	assert.True(t, CanTransition(StatusEntitled, StatusExpired))

	assert.False(t, CanTransition(StatusPendingPayment, StatusEntitled))
	assert.False(t, CanTransition(StatusDownloaded, StatusPaid))
	assert.False(t, CanTransition(StatusExpired, StatusDownloaded))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusDownloaded))
	assert.True(t, IsTerminal(StatusExpired))
	assert.False(t, IsTerminal(StatusPendingPayment))
	assert.False(t, IsTerminal(StatusEntitled))
}
