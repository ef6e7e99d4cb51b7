package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(" Asha@Example.com ", "Asha", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.True(t, u.VerifyPassword("secret123"))
	assert.False(t, u.VerifyPassword("secret124"))

	events := u.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeUserRegistered, events[0].EventType())

	tests := []struct {
		name, email, userName, password string
	}{
		{"bad email", "not-an-email", "Asha", "secret123"},
		{"empty name", "a@b.io", " ", "secret123"},
		{"short password", "a@b.io", "Asha", "s3cret"},
		{"password without digit", "a@b.io", "Asha", "secretsecret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.userName, tt.password)
			assert.Error(t, err)
		})
	}
}

func TestUser_Authenticate(t *testing.T) {
	u, err := NewUser("asha@example.com", "Asha", "secret123")
	require.NoError(t, err)
	now := time.Now()

	require.NoError(t, u.Authenticate("secret123", now))
	assert.NotNil(t, u.LastLoginAt)

	for i := 0; i < MaxFailedAttempts-1; i++ {
		assert.ErrorIs(t, u.Authenticate("wrong", now), ErrBadLogin)
	}
	assert.False(t, u.IsLocked(now))
	assert.ErrorIs(t, u.Authenticate("wrong", now), ErrBadLogin)
	assert.True(t, u.IsLocked(now))
	assert.ErrorIs(t, u.Authenticate("secret123", now), ErrLocked)

	later := now.Add(LockDuration + time.Second)
	require.NoError(t, u.Authenticate("secret123", later))

	u.Deactivate()
	assert.ErrorIs(t, u.Authenticate("secret123", later), ErrBadLogin)
}

func TestPasswordResetToken(t *testing.T) {
	now := time.Now()
	tok, secret, err := NewPasswordResetToken(uuid.New(), now)
	require.NoError(t, err)
	assert.Len(t, secret, 64)
	assert.Equal(t, HashResetSecret(secret), tok.TokenHash)
	assert.NotEqual(t, secret, tok.TokenHash)

	t.Run("expired", func(t *testing.T) {
		expired := *tok
		assert.ErrorIs(t, expired.Consume(now.Add(ResetTokenTTL)), ErrResetTokenInvalid)
	})

	require.NoError(t, tok.Consume(now.Add(time.Minute)))
	assert.ErrorIs(t, tok.Consume(now.Add(2*time.Minute)), ErrResetTokenInvalid)
}
