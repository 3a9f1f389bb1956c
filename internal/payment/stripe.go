// AngelaMos | 2026
// stripe.go

package payment

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/promptforge/storefront/internal/pricing"
)

// StripeProvider drives Stripe hosted Checkout Sessions. The session id
// doubles as the pending reference and the confirmation id.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

func (p *StripeProvider) Name() string {
	return "stripe"
}

func (p *StripeProvider) Initiate(
	ctx context.Context,
	quote *pricing.Quote,
	successURL, cancelURL string,
) (*Redirect, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(quote.Items))
	for _, item := range quote.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(quote.Currency)),
				UnitAmount: stripe.Int64(item.UnitPrice),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Title),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}

	return &Redirect{URL: sess.URL, Reference: sess.ID}, nil
}

// Confirm re-reads the session from Stripe rather than trusting the
// return redirect; only payment_status=paid settles the order.
func (p *StripeProvider) Confirm(
	ctx context.Context,
	reference string,
	_ url.Values,
) (*Outcome, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.Get(reference, params)
	if err != nil {
		return nil, fmt.Errorf("stripe retrieve session: %w", err)
	}

	return &Outcome{
		Confirmed:     sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		TransactionID: sess.ID,
	}, nil
}
