// AngelaMos | 2026
// paypal.go

package payment

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/plutov/paypal/v4"

	"github.com/promptforge/storefront/internal/pricing"
)

// PayPalProvider drives the PayPal Orders v2 flow. The PayPal order id
// is the pending reference; capture on return settles it.
type PayPalProvider struct {
	client *paypal.Client
}

func NewPayPalProvider(clientID, secret string, sandbox bool) (*PayPalProvider, error) {
	base := paypal.APIBaseLive
	if sandbox {
		base = paypal.APIBaseSandBox
	}

	c, err := paypal.NewClient(clientID, secret, base)
	if err != nil {
		return nil, fmt.Errorf("paypal client: %w", err)
	}

	return &PayPalProvider{client: c}, nil
}

func (p *PayPalProvider) Name() string {
	return "paypal"
}

func (p *PayPalProvider) Initiate(
	ctx context.Context,
	quote *pricing.Quote,
	successURL, cancelURL string,
) (*Redirect, error) {
	if _, err := p.client.GetAccessToken(ctx); err != nil {
		return nil, fmt.Errorf("paypal access token: %w", err)
	}

	items := make([]paypal.Item, 0, len(quote.Items))
	for _, li := range quote.Items {
		items = append(items, paypal.Item{
			Name: li.Title,
			UnitAmount: &paypal.Money{
				Currency: quote.Currency,
				Value:    formatMinor(li.UnitPrice),
			},
			Quantity: strconv.Itoa(li.Quantity),
		})
	}

	units := []paypal.PurchaseUnitRequest{{
		Amount: &paypal.PurchaseUnitAmount{
			Currency: quote.Currency,
			Value:    formatMinor(quote.Total),
			Breakdown: &paypal.PurchaseUnitAmountBreakdown{
				ItemTotal: &paypal.Money{
					Currency: quote.Currency,
					Value:    formatMinor(quote.Total),
				},
			},
		},
		Items: items,
	}}

	order, err := p.client.CreateOrder(
		ctx,
		paypal.OrderIntentCapture,
		units,
		nil,
		&paypal.ApplicationContext{
			ReturnURL: successURL,
			CancelURL: cancelURL,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("paypal create order: %w", err)
	}

	approveURL := ""
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approveURL = link.Href
			break
		}
	}
	if approveURL == "" {
		return nil, fmt.Errorf("paypal order %s: no approve link", order.ID)
	}

	return &Redirect{URL: approveURL, Reference: order.ID}, nil
}

func (p *PayPalProvider) Confirm(
	ctx context.Context,
	reference string,
	_ url.Values,
) (*Outcome, error) {
	if _, err := p.client.GetAccessToken(ctx); err != nil {
		return nil, fmt.Errorf("paypal access token: %w", err)
	}

	capture, err := p.client.CaptureOrder(ctx, reference, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, fmt.Errorf("paypal capture order %s: %w", reference, err)
	}

	return &Outcome{
		Confirmed:     capture.Status == "COMPLETED",
		TransactionID: capture.ID,
	}, nil
}

// formatMinor renders integer minor units as the decimal string PayPal
// expects, e.g. 2250 -> "22.50".
func formatMinor(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
