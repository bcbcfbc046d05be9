package user

import (
	"time"

	"github.com/google/uuid"
)

// User maps 1:1 to the users table.
//
//	id                      UUID PRIMARY KEY
//	email                   TEXT NOT NULL UNIQUE
//	name                    TEXT NOT NULL
//	password_hash           TEXT NOT NULL
//	role                    TEXT NOT NULL DEFAULT 'user'
//	reset_token             TEXT NULL
//	reset_token_expires_at  TIMESTAMPTZ NULL
//	created_at              TIMESTAMPTZ NOT NULL DEFAULT now()
//	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
//
// Hearted animals live in the animal_hearts join table
// (user_id, animal_id, created_at), one row per heart.
type User struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Email string    `db:"email" json:"email"`
	Name  string    `db:"name" json:"name"`

	PasswordHash string `db:"password_hash" json:"-"`

	Role Role `db:"role" json:"role"`

	ResetToken          *string    `db:"reset_token" json:"-"`
	ResetTokenExpiresAt *time.Time `db:"reset_token_expires_at" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// IsPasswordResetValid reports whether the stored reset token is still
// usable.
func (u *User) IsPasswordResetValid() bool {
	if u.ResetToken == nil || u.ResetTokenExpiresAt == nil {
		return false
	}
	return time.Now().Before(*u.ResetTokenExpiresAt)
}

// Sanitize removes sensitive fields before the entity leaves the service.
func (u *User) Sanitize() {
	u.PasswordHash = ""
	u.ResetToken = nil
}
