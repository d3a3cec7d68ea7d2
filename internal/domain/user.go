package domain

import (
	"context"
	"time"
)

// Role is an application role carried in the token.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is the verified caller of an operation: who they are and what
// role they hold. Every service method that needs authorization takes an
// Identity as an explicit parameter; there is no ambient current-user state.
type Identity struct {
	ID   string
	Role Role
}

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the user's identity for authorization decisions.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Role: u.Role}
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues signed tokens for an authenticated user.
type TokenIssuer interface {
	Issue(identity Identity, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the caller's identity.
// Fails with ErrInvalidToken for bad signatures, malformed tokens, and
// expired tokens alike.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// UserRepository defines the interface for user storage. Create must return
// ErrConflict when the email is already taken; email uniqueness is enforced
// by the store, not by application logic.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// AuthService handles registration, login, and profile lookup.
type AuthService interface {
	Register(ctx context.Context, name, email, password string, role Role) (token string, user *User, err error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	// GetUser loads a user profile by ID, served through the identity cache region.
	GetUser(ctx context.Context, id string) (*User, error)
}
