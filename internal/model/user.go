package model

import "time"

// Role is one of the three staff roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleLifeguard  Role = "lifeguard"
)

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleLifeguard:
		return true
	}
	return false
}

// User represents an application user record as stored in the
// `users` table.  A nil PasswordHash means the account was created by an
// admin but has not been activated yet; such a user cannot log in.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Name          – display name.
//  Email         – unique email address, compared as stored.
//  Role          – admin, technician or lifeguard.
//  PasswordHash  – bcrypt hash, nil until activation.
//  IsActive      – whether the account may be used.
//  EmailVerified – set together with the password on activation.
//  CreatedAt     – timestamp of creation.
type User struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	PasswordHash  *string   `json:"-"`
	IsActive      bool      `json:"is_active"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// Activated reports whether the user has established a password.
func (u User) Activated() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
