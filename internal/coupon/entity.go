// AngelaMos | 2026
// entity.go

package coupon

import (
	"time"
)

// Coupon maps a normalized code to a percentage discount in (0,100].
type Coupon struct {
	Code      string    `db:"code"`
	Discount  int       `db:"discount"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
