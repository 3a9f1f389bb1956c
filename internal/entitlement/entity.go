// AngelaMos | 2026
// entity.go

package entitlement

import (
	"time"
)

// Status is derived from the row at read time, never stored.
type Status string

const (
	StatusReady      Status = "ready"
	StatusDownloaded Status = "downloaded"
	StatusExpired    Status = "expired"
)

// Entitlement is one purchased download right. The triple
// (user_id, file, confirmation_id) is unique; replaying a payment
// confirmation can never mint a second row.
type Entitlement struct {
	ID             string     `db:"id"`
	UserID         string     `db:"user_id"`
	Email          string     `db:"email"`
	File           string     `db:"file"`
	ProductTitle   string     `db:"product_title"`
	PricePaid      int64      `db:"price_paid"`
	ConfirmationID string     `db:"confirmation_id"`
	TransactionID  string     `db:"transaction_id"`
	CreatedAt      time.Time  `db:"created_at"`
	ExpiresAt      time.Time  `db:"expires_at"`
	Downloaded     bool       `db:"downloaded"`
	DownloadedAt   *time.Time `db:"downloaded_at"`
}

// StatusAt derives the visible lifecycle state. Expiry wins over the
// downloaded flag so a stale row reads expired either way.
func (e *Entitlement) StatusAt(now time.Time) Status {
	if !now.Before(e.ExpiresAt) {
		return StatusExpired
	}
	if e.Downloaded {
		return StatusDownloaded
	}
	return StatusReady
}
