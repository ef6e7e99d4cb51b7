package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Token errors returned by refresh and logout
var (
	ErrTokenExpired    = shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	ErrTokenInvalid    = shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	ErrTokenMaxRefresh = shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	ErrTokenRevoked    = shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	ErrAccountInactive = shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
)

// ResetMailer sends password reset links
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, name, token string, validity time.Duration) error
}

// AuthServiceConfig wires an AuthService
type AuthServiceConfig struct {
	Users          identity.UserRepository
	Resets         identity.PasswordResetRepository
	JWT            *auth.JWTService
	Blacklist      auth.TokenBlacklist
	Mailer         ResetMailer
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// AuthService handles authentication operations
type AuthService struct {
	users     identity.UserRepository
	resets    identity.PasswordResetRepository
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	mailer    ResetMailer
	bus       shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &AuthService{
		users:     cfg.Users,
		resets:    cfg.Resets,
		jwt:       cfg.JWT,
		blacklist: cfg.Blacklist,
		mailer:    cfg.Mailer,
		bus:       cfg.EventPublisher,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

// Register creates a customer account and logs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	user, err := identity.NewUser(req.Email, req.Name, req.Password)
	if err != nil {
		return nil, err
	}
	exists, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, identity.ErrEmailTaken
	}
	if req.Phone != "" {
		if err := user.SetPhone(req.Phone); err != nil {
			return nil, err
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.publish(ctx, user)

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("login for unknown email")
			return nil, identity.ErrBadLogin
		}
		return nil, err
	}

	authErr := user.Authenticate(req.Password, s.now())
	if authErr != nil && errors.Is(authErr, identity.ErrLocked) {
		s.logger.Warn("login attempt for locked account", zap.String("user_id", user.ID.String()))
		return nil, authErr
	}

	// the attempt counter changes on failure as well as success
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("failed to record login attempt", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	if authErr != nil {
		s.logger.Warn("invalid password attempt",
			zap.String("user_id", user.ID.String()),
			zap.Int("failed_attempts", user.FailedAttempts),
			zap.Bool("locked", user.IsLocked(s.now())),
		)
		return nil, authErr
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair. The used refresh token is revoked.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResult, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	pair, err := s.jwt.RefreshTokenPair(claims, tokenInput(user))
	if err != nil {
		return nil, mapTokenError(err)
	}
	s.revoke(ctx, claims)

	return toAuthResult(pair, user), nil
}

// Logout revokes the access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, access *auth.Claims, req LogoutRequest) error {
	if access != nil {
		s.revoke(ctx, access)
	}
	if req.RefreshToken != "" {
		if refresh, err := s.jwt.ValidateRefreshToken(req.RefreshToken); err == nil {
			s.revoke(ctx, refresh)
		}
	}
	if access != nil {
		s.logger.Info("user logged out", zap.String("user_id", access.UserID))
	}
	return nil
}

// ForgotPassword mails a single-use reset link. Unknown emails succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	if err := s.resets.InvalidateForUser(ctx, user.ID); err != nil {
		return err
	}
	token, secret, err := identity.NewPasswordResetToken(user.ID, s.now())
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.resets.Save(ctx, token); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, secret, identity.ResetTokenTTL); err != nil {
			s.logger.Error("failed to send password reset email", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}
	s.logger.Info("password reset requested", zap.String("user_id", user.ID.String()))
	return nil
}

// ResetPassword sets a new password with a reset token and revokes every issued token
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	token, err := s.resets.FindByHash(ctx, identity.HashResetSecret(req.Token))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return identity.ErrResetTokenInvalid
		}
		return err
	}
	if err := token.Consume(s.now()); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if err := s.resets.Save(ctx, token); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	if err := s.resets.InvalidateForUser(ctx, user.ID); err != nil {
		s.logger.Warn("failed to invalidate other reset tokens", zap.Error(err))
	}
	if s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.jwt.RefreshTTL()); err != nil {
			s.logger.Warn("failed to revoke tokens after password reset", zap.Error(err))
		}
	}
	s.publish(ctx, user)

	s.logger.Info("password reset", zap.String("user_id", user.ID.String()))
	return nil
}

// Me returns the caller's account
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	pair, err := s.jwt.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generate tokens: %w", err)
	}
	return toAuthResult(pair, user), nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	revoked, err := s.blacklist.Revoked(ctx, claims)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func (s *AuthService) revoke(ctx context.Context, claims *auth.Claims) {
	if s.blacklist == nil || claims.ID == "" {
		return
	}
	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		return
	}
	if err := s.blacklist.RevokeToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("failed to revoke token", zap.String("jti", claims.ID), zap.Error(err))
	}
}

func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	events := user.PullDomainEvents()
	if s.bus == nil || len(events) == 0 {
		return
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish user events", zap.Error(err))
	}
}

func tokenInput(user *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}
}

func toAuthResult(pair *auth.TokenPair, user *identity.User) *AuthResult {
	return &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserInfo(user),
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	default:
		return ErrTokenInvalid
	}
}
