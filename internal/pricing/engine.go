// AngelaMos | 2026
// engine.go

package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/promptforge/storefront/internal/catalog"
	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/coupon"
)

type LineItem struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	File      string `json:"file"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

func (li LineItem) Subtotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

// Quote is the priced order for one checkout attempt. It is never
// persisted; only the entitlements minted from it are.
type Quote struct {
	Items      []LineItem `json:"items"`
	Total      int64      `json:"total"`
	CouponCode string     `json:"coupon_code,omitempty"`
	Discount   int        `json:"discount"`
	Currency   string     `json:"currency"`
}

type ProductSource interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
}

type CouponResolver interface {
	Resolve(ctx context.Context, code string) (int, error)
}

type Engine struct {
	products ProductSource
	coupons  CouponResolver
	currency string
}

func NewEngine(
	products ProductSource,
	coupons CouponResolver,
	currency string,
) *Engine {
	return &Engine{
		products: products,
		coupons:  coupons,
		currency: currency,
	}
}

// Quote groups the cart sequence into line items and totals them in minor
// currency units. Coupon application is all-or-nothing: an unknown code
// aborts with ErrInvalidCoupon rather than silently charging full price.
// Product ids that no longer resolve are dropped; a cart that prices down
// to nothing is ErrEmptyCart.
func (e *Engine) Quote(
	ctx context.Context,
	contents []string,
	couponCode string,
) (*Quote, error) {
	if len(contents) == 0 {
		return nil, fmt.Errorf("quote: %w", core.ErrEmptyCart)
	}

	discount := 0
	normalizedCode := ""
	if couponCode != "" {
		d, err := e.coupons.Resolve(ctx, couponCode)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, fmt.Errorf(
					"quote: coupon %q: %w",
					couponCode,
					core.ErrInvalidCoupon,
				)
			}
			return nil, fmt.Errorf("quote: resolve coupon: %w", err)
		}
		discount = d
		normalizedCode = coupon.Normalize(couponCode)
	}

	quantities := make(map[string]int, len(contents))
	order := make([]string, 0, len(contents))
	for _, pid := range contents {
		if _, seen := quantities[pid]; !seen {
			order = append(order, pid)
		}
		quantities[pid]++
	}

	quote := &Quote{
		CouponCode: normalizedCode,
		Discount:   discount,
		Currency:   e.currency,
	}

	for _, pid := range order {
		product, err := e.products.Get(ctx, pid)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("quote: get product %s: %w", pid, err)
		}

		unit := DiscountedPrice(product.Price, discount)
		item := LineItem{
			ProductID: product.ID,
			Title:     product.Title,
			File:      product.File,
			UnitPrice: unit,
			Quantity:  quantities[pid],
		}

		quote.Items = append(quote.Items, item)
		quote.Total += item.Subtotal()
	}

	if len(quote.Items) == 0 {
		return nil, fmt.Errorf("quote: %w", core.ErrEmptyCart)
	}

	return quote, nil
}

// DiscountedPrice applies a percentage discount with integer floor
// semantics: floor(price * (100 - discount) / 100).
func DiscountedPrice(price int64, discount int) int64 {
	if discount <= 0 {
		return price
	}
	return price * int64(100-discount) / 100
}
