// AngelaMos | 2026
// service_test.go

package coupon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptforge/storefront/internal/core"
)

type fakeRepo struct {
	coupons map[string]*Coupon
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{coupons: make(map[string]*Coupon)}
}

func (f *fakeRepo) GetByCode(_ context.Context, code string) (*Coupon, error) {
	c, ok := f.coupons[code]
	if !ok {
		return nil, core.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) Upsert(_ context.Context, coupon *Coupon) error {
	f.coupons[coupon.Code] = coupon
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, code string) error {
	if _, ok := f.coupons[code]; !ok {
		return core.ErrNotFound
	}
	delete(f.coupons, code)
	return nil
}

func (f *fakeRepo) List(_ context.Context) ([]Coupon, error) {
	out := make([]Coupon, 0, len(f.coupons))
	for _, c := range f.coupons {
		out = append(out, *c)
	}
	return out, nil
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "SAVE10", Normalize("save10"))
	assert.Equal(t, "SAVE10", Normalize("  Save10  "))
	assert.Equal(t, "", Normalize("   "))
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.Upsert(context.Background(), "save10", 10)
	require.NoError(t, err)

	discount, err := svc.Resolve(context.Background(), "  sAvE10 ")
	require.NoError(t, err)
	assert.Equal(t, 10, discount)
}

func TestResolveUnknownCode(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Resolve(context.Background(), "NOPE")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResolveEmptyCode(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpsertRejectsBadDiscount(t *testing.T) {
	svc := NewService(newFakeRepo())

	for _, discount := range []int{0, -5, 101} {
		_, err := svc.Upsert(context.Background(), "CODE", discount)
		assert.ErrorIs(t, err, core.ErrInvalidDiscount, "discount %d", discount)
	}
}

func TestUpsertAcceptsFullRange(t *testing.T) {
	svc := NewService(newFakeRepo())

	for _, discount := range []int{1, 50, 100} {
		c, err := svc.Upsert(context.Background(), "CODE", discount)
		require.NoError(t, err)
		assert.Equal(t, discount, c.Discount)
	}
}

func TestUpsertRequiresCode(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Upsert(context.Background(), "  ", 10)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpsertOverwritesDiscount(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.Upsert(context.Background(), "SALE", 10)
	require.NoError(t, err)
	_, err = svc.Upsert(context.Background(), "sale", 25)
	require.NoError(t, err)

	discount, err := svc.Resolve(context.Background(), "SALE")
	require.NoError(t, err)
	assert.Equal(t, 25, discount)
}
