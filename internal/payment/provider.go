// AngelaMos | 2026
// provider.go

package payment

import (
	"context"
	"net/url"

	"github.com/promptforge/storefront/internal/pricing"
)

// Redirect is the hand-off to the provider's hosted payment page.
type Redirect struct {
	URL       string
	Reference string
}

// Outcome reports whether the provider considers the payment settled.
type Outcome struct {
	Confirmed     bool
	TransactionID string
}

// Provider abstracts a hosted-checkout payment processor. Initiate creates
// a pending payment and returns where to send the buyer; Confirm settles
// the pending reference once the buyer returns.
type Provider interface {
	Name() string
	Initiate(ctx context.Context, quote *pricing.Quote, successURL, cancelURL string) (*Redirect, error)
	Confirm(ctx context.Context, reference string, params url.Values) (*Outcome, error)
}
