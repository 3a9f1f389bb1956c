// AngelaMos | 2026
// handler_test.go

package coupon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptforge/storefront/internal/catalog"
	"github.com/promptforge/storefront/internal/core"
)

type fakeCatalogRepo struct {
	products map[string]*catalog.Product
}

func (f *fakeCatalogRepo) Create(_ context.Context, product *catalog.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeCatalogRepo) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
	}
	return p, nil
}

func (f *fakeCatalogRepo) Update(_ context.Context, product *catalog.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeCatalogRepo) Delete(_ context.Context, id string) error {
	delete(f.products, id)
	return nil
}

func (f *fakeCatalogRepo) List(_ context.Context) ([]catalog.Product, error) {
	return nil, nil
}

func validateHandler(t *testing.T) *Handler {
	t.Helper()

	coupons := newFakeRepo()
	coupons.coupons["SAVE10"] = &Coupon{Code: "SAVE10", Discount: 10}

	products := &fakeCatalogRepo{products: map[string]*catalog.Product{
		"p1": {ID: "p1", Title: "Pack", Price: 1000, File: "pack.zip"},
	}}

	return NewHandler(NewService(coupons), catalog.NewService(products))
}

func postValidate(t *testing.T, h *Handler, body string) ValidateCouponResponse {
	t.Helper()

	req := httptest.NewRequest(
		http.MethodPost,
		"/coupons/validate",
		bytes.NewBufferString(body),
	)
	rec := httptest.NewRecorder()
	h.ValidateCoupon(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ValidateCouponResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestValidateCouponKnownCode(t *testing.T) {
	resp := postValidate(t, validateHandler(t), `{"code":"save10","product_id":"p1"}`)

	assert.True(t, resp.Valid)
	assert.Equal(t, 10, resp.Discount)
	assert.Equal(t, int64(900), resp.FinalPrice)
}

func TestValidateCouponUnknownCodePreviewsFullPrice(t *testing.T) {
	resp := postValidate(t, validateHandler(t), `{"code":"NOPE","product_id":"p1"}`)

	assert.True(t, resp.Valid, "valid describes the product, not the code")
	assert.Equal(t, 0, resp.Discount)
	assert.Equal(t, int64(1000), resp.FinalPrice)
}

func TestValidateCouponUnknownProduct(t *testing.T) {
	resp := postValidate(t, validateHandler(t), `{"code":"SAVE10","product_id":"ghost"}`)

	assert.False(t, resp.Valid)
}
