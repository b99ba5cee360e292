package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/vendora/vendora-api/internal/pkg/session"
)

// User is a marketplace account.
type User struct {
	ID           uuid.UUID      `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	FullName     string         `db:"full_name"`
	Phone        sql.NullString `db:"phone"`
	Role         session.Role   `db:"role"`
	IsActive     bool           `db:"is_active"`
	LastLoginAt  sql.NullTime   `db:"last_login_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (u *User) IsVendor() bool { return u.Role == session.RoleVendor }

func (u *User) IsAdmin() bool { return u.Role == session.RoleAdmin }

// Public is the JSON shape exposed to the account owner.
type Public struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToPublic() Public {
	return Public{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone.String,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
