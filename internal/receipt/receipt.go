// AngelaMos | 2026
// receipt.go

package receipt

import (
	"context"
	"log/slog"
	"time"
)

// Receipt describes one purchased item for the buyer's records.
type Receipt struct {
	Email        string
	ProductTitle string
	PricePaid    int64
	Currency     string
	IssuedAt     time.Time
}

// Issuer delivers purchase receipts. Delivery is best effort; the
// fulfillment engine never fails an order over a receipt.
type Issuer interface {
	Issue(ctx context.Context, rcpt Receipt) error
}

// LogIssuer records receipts to the structured log. It stands in for a
// mail transport in environments without SMTP credentials.
type LogIssuer struct {
	logger *slog.Logger
}

func NewLogIssuer(logger *slog.Logger) *LogIssuer {
	return &LogIssuer{logger: logger}
}

func (i *LogIssuer) Issue(_ context.Context, rcpt Receipt) error {
	i.logger.Info("receipt issued",
		"email", rcpt.Email,
		"product", rcpt.ProductTitle,
		"price_paid", rcpt.PricePaid,
		"currency", rcpt.Currency,
		"issued_at", rcpt.IssuedAt,
	)
	return nil
}
