package models

import (
	"time"

	"github.com/google/uuid"
)

// Self-registered accounts always get the admin role over their own portfolio.
const RoleAdmin = "admin"

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never serialize in JSON
	Name         string     `json:"name" db:"name"`
	Organization *string    `json:"organization,omitempty" db:"organization"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	Role         string     `json:"role" db:"role"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" db:"last_login"`

	// Digest of the active reset code and its absolute expiry.
	// Both are always set together and cleared together.
	ResetPasswordToken  *string    `json:"-" db:"reset_password_token"`
	ResetPasswordExpire *time.Time `json:"-" db:"reset_password_expire"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
