// AngelaMos | 2026
// engine_test.go

package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptforge/storefront/internal/catalog"
	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/coupon"
)

type fakeProducts struct {
	products map[string]*catalog.Product
}

func (f *fakeProducts) Get(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return p, nil
}

type fakeCoupons struct {
	discounts map[string]int
}

func (f *fakeCoupons) Resolve(_ context.Context, code string) (int, error) {
	d, ok := f.discounts[coupon.Normalize(code)]
	if !ok {
		return 0, core.ErrNotFound
	}
	return d, nil
}

func newTestEngine() *Engine {
	products := &fakeProducts{products: map[string]*catalog.Product{
		"prod-a": {ID: "prod-a", Title: "Prompt Pack A", File: "pack-a.zip", Price: 1000},
		"prod-b": {ID: "prod-b", Title: "Prompt Pack B", File: "pack-b.zip", Price: 500},
	}}
	coupons := &fakeCoupons{discounts: map[string]int{"SAVE10": 10}}
	return NewEngine(products, coupons, "EUR")
}

func TestQuoteGroupsAndTotals(t *testing.T) {
	e := newTestEngine()

	quote, err := e.Quote(context.Background(), []string{"prod-a", "prod-b", "prod-a"}, "")
	require.NoError(t, err)

	require.Len(t, quote.Items, 2)
	assert.Equal(t, "prod-a", quote.Items[0].ProductID)
	assert.Equal(t, 2, quote.Items[0].Quantity)
	assert.Equal(t, int64(1000), quote.Items[0].UnitPrice)
	assert.Equal(t, "prod-b", quote.Items[1].ProductID)
	assert.Equal(t, 1, quote.Items[1].Quantity)
	assert.Equal(t, int64(2500), quote.Total)
	assert.Equal(t, "EUR", quote.Currency)
}

func TestQuoteAppliesCouponPerUnit(t *testing.T) {
	e := newTestEngine()

	quote, err := e.Quote(
		context.Background(),
		[]string{"prod-a", "prod-b", "prod-a"},
		"SAVE10",
	)
	require.NoError(t, err)

	assert.Equal(t, int64(900), quote.Items[0].UnitPrice)
	assert.Equal(t, int64(450), quote.Items[1].UnitPrice)
	assert.Equal(t, int64(2250), quote.Total)
	assert.Equal(t, 10, quote.Discount)
	assert.Equal(t, "SAVE10", quote.CouponCode)
}

func TestQuoteStoresNormalizedCouponCode(t *testing.T) {
	e := newTestEngine()

	quote, err := e.Quote(context.Background(), []string{"prod-a"}, "  save10 ")
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", quote.CouponCode)
	assert.Equal(t, 10, quote.Discount)
	assert.Equal(t, int64(900), quote.Total)
}

func TestQuoteUnknownCouponAborts(t *testing.T) {
	e := newTestEngine()

	_, err := e.Quote(context.Background(), []string{"prod-a"}, "BADCODE")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidCoupon)
}

func TestQuoteEmptyCart(t *testing.T) {
	e := newTestEngine()

	_, err := e.Quote(context.Background(), nil, "")
	assert.ErrorIs(t, err, core.ErrEmptyCart)
}

func TestQuoteDropsDeletedProducts(t *testing.T) {
	e := newTestEngine()

	quote, err := e.Quote(
		context.Background(),
		[]string{"prod-a", "gone", "prod-b"},
		"",
	)
	require.NoError(t, err)

	require.Len(t, quote.Items, 2)
	assert.Equal(t, int64(1500), quote.Total)
}

func TestQuoteAllDeletedIsEmpty(t *testing.T) {
	e := newTestEngine()

	_, err := e.Quote(context.Background(), []string{"gone", "also-gone"}, "")
	assert.ErrorIs(t, err, core.ErrEmptyCart)
}

func TestDiscountedPriceFloors(t *testing.T) {
	assert.Equal(t, int64(1000), DiscountedPrice(1000, 0))
	assert.Equal(t, int64(900), DiscountedPrice(1000, 10))
	// 999 * 90 / 100 = 899.1, floors to 899
	assert.Equal(t, int64(899), DiscountedPrice(999, 10))
	assert.Equal(t, int64(0), DiscountedPrice(1000, 100))
	assert.Equal(t, int64(0), DiscountedPrice(1, 50))
}
