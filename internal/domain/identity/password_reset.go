package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ResetTokenTTL is how long a password reset link stays valid
const ResetTokenTTL = time.Hour

// ErrResetTokenInvalid covers unknown, used and expired reset tokens alike
var ErrResetTokenInvalid = shared.NewDomainError("INVALID_RESET_TOKEN", "Reset link is invalid or has expired")

// PasswordResetToken is a single-use reset credential. Only the hash of the secret is stored.
type PasswordResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// NewPasswordResetToken creates a token for userID and returns it with the plain secret to mail
func NewPasswordResetToken(userID uuid.UUID, now time.Time) (*PasswordResetToken, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, "", err
	}
	secret := hex.EncodeToString(buf)

	return &PasswordResetToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: HashResetSecret(secret),
		ExpiresAt: now.Add(ResetTokenTTL),
		CreatedAt: now,
	}, secret, nil
}

// HashResetSecret returns the lookup hash of a reset secret
func HashResetSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Consume marks the token used, failing if it is already used or expired
func (t *PasswordResetToken) Consume(now time.Time) error {
	if t.UsedAt != nil || !now.Before(t.ExpiresAt) {
		return ErrResetTokenInvalid
	}
	t.UsedAt = &now
	return nil
}
