// AngelaMos | 2026
// entity.go

package catalog

import (
	"time"
)

// Product is a digital good. Price is in integer minor currency units
// (cents); File names the deliverable in the file store.
type Product struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	Price        int64     `db:"price"`
	File         string    `db:"file"`
	PreviewImage *string   `db:"preview_image"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
