package model

import (
	"database/sql"
	"strings"
	"time"
)

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column. The json tags are omitted
// because these structs are used by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – unique email address, persisted lowercase.
//  PasswordHash – bcrypt hashed password.
//  FirstName    – given name.
//  LastName     – family name.
//  Phone        – optional phone number (nullable).
//  Address      – optional shipping address (nullable).
//  IsActive     – whether the account can log in.
//  IsStaff      – whether the account has admin privileges.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64         // users.id
	Username     string         // users.username
	Email        string         // users.email
	PasswordHash string         // users.password_hash
	FirstName    string         // users.first_name
	LastName     string         // users.last_name
	Phone        sql.NullString // users.phone (nullable)
	Address      sql.NullString // users.address (nullable)
	IsActive     bool           // users.is_active
	IsStaff      bool           // users.is_staff
	CreatedAt    time.Time      // users.created_at
	UpdatedAt    time.Time      // users.updated_at
}

// FullName returns "First Last" trimmed, falling back to the username when
// both name parts are empty.
func (u User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full
}

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to a user and carries expiry and revocation metadata. The
// plain token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
