package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockResetRepository is a mock implementation of identity.PasswordResetRepository
type MockResetRepository struct {
	mock.Mock
}

func (m *MockResetRepository) Save(ctx context.Context, token *identity.PasswordResetToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockResetRepository) FindByHash(ctx context.Context, hash string) (*identity.PasswordResetToken, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.PasswordResetToken), args.Error(1)
}

func (m *MockResetRepository) InvalidateForUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// MockResetMailer is a mock implementation of ResetMailer
type MockResetMailer struct {
	mock.Mock
}

func (m *MockResetMailer) SendPasswordReset(ctx context.Context, to, name, token string, validity time.Duration) error {
	return m.Called(ctx, to, name, token, validity).Error(0)
}

type authFixture struct {
	svc       *AuthService
	users     *MockUserRepository
	resets    *MockResetRepository
	mailer    *MockResetMailer
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:  new(MockUserRepository),
		resets: new(MockResetRepository),
		mailer: new(MockResetMailer),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "storefront-test",
			MaxRefreshCount:        3,
		}),
		blacklist: auth.NewInMemoryTokenBlacklist(),
	}
	f.svc = NewAuthService(AuthServiceConfig{
		Users:     f.users,
		Resets:    f.resets,
		JWT:       f.jwt,
		Blacklist: f.blacklist,
		Mailer:    f.mailer,
		Logger:    zap.NewNop(),
	})
	return f
}

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewUser("meera@example.com", "Meera", "cotton123")
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates a customer and issues tokens", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("ExistsByEmail", mock.Anything, "meera@example.com").Return(false, nil)
		f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *identity.User) bool {
			return u.Role == identity.RoleCustomer && u.Phone == "9876543210"
		})).Return(nil)

		res, err := f.svc.Register(context.Background(), RegisterRequest{
			Name:     "Meera",
			Email:    "Meera@Example.com",
			Password: "cotton123",
			Phone:    "9876543210",
		})
		require.NoError(t, err)
		assert.Equal(t, "meera@example.com", res.User.Email)
		assert.Equal(t, "Bearer", res.TokenType)

		claims, err := f.jwt.ValidateAccessToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID.String(), claims.UserID)
		assert.Equal(t, "CUSTOMER", claims.Role)
	})

	t.Run("email taken", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("ExistsByEmail", mock.Anything, "meera@example.com").Return(true, nil)

		_, err := f.svc.Register(context.Background(), RegisterRequest{Name: "Meera", Email: "meera@example.com", Password: "cotton123"})
		assert.ErrorIs(t, err, identity.ErrEmailTaken)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("weak password", func(t *testing.T) {
		f := newAuthFixture()
		_, err := f.svc.Register(context.Background(), RegisterRequest{Name: "Meera", Email: "meera@example.com", Password: "password"})
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_PASSWORD", domainErr.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("success records the login", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t)
		f.users.On("FindByEmail", mock.Anything, "meera@example.com").Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(nil)

		res, err := f.svc.Login(context.Background(), LoginRequest{Email: "meera@example.com", Password: "cotton123"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.RefreshToken)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, shared.ErrNotFound)

		_, err := f.svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "cotton123"})
		assert.ErrorIs(t, err, identity.ErrBadLogin)
	})

	t.Run("wrong password counts the attempt", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t)
		f.users.On("FindByEmail", mock.Anything, "meera@example.com").Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(nil)

		_, err := f.svc.Login(context.Background(), LoginRequest{Email: "meera@example.com", Password: "linen456"})
		assert.ErrorIs(t, err, identity.ErrBadLogin)
		assert.Equal(t, 1, user.FailedAttempts)
		f.users.AssertCalled(t, "Update", mock.Anything, user)
	})

	t.Run("locked account", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t)
		until := time.Now().Add(10 * time.Minute)
		user.LockedUntil = &until
		f.users.On("FindByEmail", mock.Anything, "meera@example.com").Return(user, nil)

		_, err := f.svc.Login(context.Background(), LoginRequest{Email: "meera@example.com", Password: "cotton123"})
		assert.ErrorIs(t, err, identity.ErrLocked)
		f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	f := newAuthFixture()
	user := newTestUser(t)
	user.PromoteToAdmin()
	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: user.ID, Email: user.Email, Role: "CUSTOMER"})
	require.NoError(t, err)
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	res, err := f.svc.Refresh(context.Background(), RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)

	claims, err := f.jwt.ValidateAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", claims.Role)

	t.Run("used refresh token is revoked", func(t *testing.T) {
		_, err := f.svc.Refresh(context.Background(), RefreshRequest{RefreshToken: pair.RefreshToken})
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := f.svc.Refresh(context.Background(), RefreshRequest{RefreshToken: "not-a-token"})
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("inactive user", func(t *testing.T) {
		g := newAuthFixture()
		inactive := newTestUser(t)
		inactive.Deactivate()
		p, err := g.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: inactive.ID})
		require.NoError(t, err)
		g.users.On("FindByID", mock.Anything, inactive.ID).Return(inactive, nil)

		_, err = g.svc.Refresh(context.Background(), RefreshRequest{RefreshToken: p.RefreshToken})
		assert.ErrorIs(t, err, ErrAccountInactive)
	})
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture()
	user := newTestUser(t)
	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: user.ID, Email: user.Email, Role: "CUSTOMER"})
	require.NoError(t, err)
	access, err := f.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := f.jwt.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), access, LogoutRequest{RefreshToken: pair.RefreshToken}))

	ctx := context.Background()
	revoked, err := f.blacklist.Revoked(ctx, access)
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = f.blacklist.Revoked(ctx, refresh)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_ForgotPassword(t *testing.T) {
	t.Run("mails a reset secret", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t)
		var saved *identity.PasswordResetToken
		f.users.On("FindByEmail", mock.Anything, "meera@example.com").Return(user, nil)
		f.resets.On("InvalidateForUser", mock.Anything, user.ID).Return(nil)
		f.resets.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*identity.PasswordResetToken)
		}).Return(nil)
		f.mailer.On("SendPasswordReset", mock.Anything, "meera@example.com", "Meera", mock.Anything, identity.ResetTokenTTL).
			Run(func(args mock.Arguments) {
				assert.Equal(t, saved.TokenHash, identity.HashResetSecret(args.String(3)))
			}).Return(nil)

		require.NoError(t, f.svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "meera@example.com"}))
		f.mailer.AssertExpectations(t)
	})

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, shared.ErrNotFound)

		require.NoError(t, f.svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "nobody@example.com"}))
		f.mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mail failure is not reported", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t)
		f.users.On("FindByEmail", mock.Anything, "meera@example.com").Return(user, nil)
		f.resets.On("InvalidateForUser", mock.Anything, user.ID).Return(nil)
		f.resets.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("smtp down"))

		assert.NoError(t, f.svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "meera@example.com"}))
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	t.Run("sets the password and revokes sessions", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t)
		token, secret, err := identity.NewPasswordResetToken(user.ID, time.Now())
		require.NoError(t, err)

		f.resets.On("FindByHash", mock.Anything, identity.HashResetSecret(secret)).Return(token, nil)
		f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(nil)
		f.resets.On("Save", mock.Anything, token).Return(nil)
		f.resets.On("InvalidateForUser", mock.Anything, user.ID).Return(nil)

		require.NoError(t, f.svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: secret, NewPassword: "linen4567"}))
		assert.True(t, user.VerifyPassword("linen4567"))
		assert.NotNil(t, token.UsedAt)

		stale, err := f.blacklist.Revoked(context.Background(), &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
			UserID:           user.ID.String(),
		})
		require.NoError(t, err)
		assert.True(t, stale)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newAuthFixture()
		f.resets.On("FindByHash", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		err := f.svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: "abc", NewPassword: "linen4567"})
		assert.ErrorIs(t, err, identity.ErrResetTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newAuthFixture()
		token, secret, err := identity.NewPasswordResetToken(uuid.New(), time.Now().Add(-2*time.Hour))
		require.NoError(t, err)
		f.resets.On("FindByHash", mock.Anything, identity.HashResetSecret(secret)).Return(token, nil)

		err = f.svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: secret, NewPassword: "linen4567"})
		assert.ErrorIs(t, err, identity.ErrResetTokenInvalid)
		f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Me(t *testing.T) {
	f := newAuthFixture()
	user := newTestUser(t)
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	info, err := f.svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meera", info.Name)

	f.users.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.NewDomainError("USER_NOT_FOUND", "User not found"))
	_, err = f.svc.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
