package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by lower-cased email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// PasswordResetRepository persists password reset tokens
type PasswordResetRepository interface {
	Save(ctx context.Context, token *PasswordResetToken) error

	// FindByHash finds a token by the SHA-256 hash of its secret
	FindByHash(ctx context.Context, hash string) (*PasswordResetToken, error)

	// InvalidateForUser marks every unused token of the user as used
	InvalidateForUser(ctx context.Context, userID uuid.UUID) error
}
