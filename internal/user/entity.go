// AngelaMos | 2026
// entity.go

package user

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type User struct {
	ID           string       `db:"id"`
	Email        string       `db:"email"`
	PasswordHash string       `db:"password_hash"`
	Name         string       `db:"name"`
	Role         string       `db:"role"`
	Verified     bool         `db:"verified"`
	Newsletter   bool         `db:"newsletter"`
	CartSnapshot CartSnapshot `db:"cart_snapshot"`
	TokenVersion int          `db:"token_version"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	DeletedAt    *time.Time   `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// CartSnapshot is the cart sequence persisted across sessions, stored as
// a jsonb column.
type CartSnapshot []string

func (c CartSnapshot) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return string(data), nil
}

func (c *CartSnapshot) Scan(src any) error {
	if src == nil {
		*c = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan cart snapshot: unsupported type %T", src)
	}

	return json.Unmarshal(data, c)
}
