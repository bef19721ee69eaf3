package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// The role column is authoritative: tokens carry a role claim as a
// hint, but every admin-gated decision re-reads Role from this
// record so that a downgrade takes effect before the token expires.
//
// Fields:
//  ID                – primary key identifier of the user.
//  Username          – unique login name (case-sensitive as stored).
//  Email             – unique email address (stored lowercased).
//  PasswordHash      – bcrypt hashed password.
//  Role              – "user" or "admin".
//  ResetToken        – pending password-reset token (nil when none).
//  ResetTokenExpires – expiry of ResetToken; set and cleared together with it.
//  CreatedAt         – timestamp of creation.
type User struct {
	ID                uint64     // users.id
	Username          string     // users.username
	Email             string     // users.email
	PasswordHash      string     // users.password_hash
	Role              string     // users.role
	ResetToken        *string    // users.reset_token (nullable)
	ResetTokenExpires *time.Time // users.reset_token_expires (nullable)
	CreatedAt         time.Time  // users.created_at
}

// Role values accepted by the users.role column.
const (
	RoleUser  = "user"  // default role for new registrations
	RoleAdmin = "admin" // catalog management access
)

// ValidRole reports whether s is one of the accepted role values.
func ValidRole(s string) bool { return s == RoleUser || s == RoleAdmin }
