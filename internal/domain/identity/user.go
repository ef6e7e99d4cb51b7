package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/matthewhartstonge/argon2"
	"github.com/storefront/backend/internal/domain/shared"
)

// Role is the coarse permission level of a user
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Login lockout policy
const (
	MaxFailedAttempts = 5
	LockDuration      = 15 * time.Minute
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	numberRegex   = regexp.MustCompile(`[0-9]`)
	ErrBadLogin   = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrLocked     = shared.NewDomainError("ACCOUNT_LOCKED", "Account is temporarily locked")
	ErrEmailTaken = shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
)

// User represents a storefront account
// It is the aggregate root for user-related operations
type User struct {
	shared.BaseAggregateRoot
	Email             string
	Name              string
	Phone             string
	PasswordHash      string
	Role              Role
	IsActive          bool
	LastLoginAt       *time.Time
	FailedAttempts    int
	LockedUntil       *time.Time
	PasswordChangedAt *time.Time
}

// NewUser creates an active customer account
func NewUser(email, name, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              name,
		Role:              RoleCustomer,
		IsActive:          true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	user.ClearDomainEvents()
	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// SetPhone sets the user's phone number
func (u *User) SetPhone(phone string) error {
	if len(phone) > 20 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 20 characters")
	}
	u.Phone = strings.TrimSpace(phone)
	u.UpdatedAt = time.Now()
	return nil
}

// PromoteToAdmin grants the admin role
func (u *User) PromoteToAdmin() {
	u.Role = RoleAdmin
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SetPassword validates and stores a new password hash
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	cfg := argon2.DefaultConfig()
	encoded, err := cfg.HashEncoded([]byte(newPassword))
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	u.PasswordHash = string(encoded)
	u.PasswordChangedAt = &now
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = now
	u.IncrementVersion()

	u.AddDomainEvent(NewUserPasswordChangedEvent(u))
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(u.PasswordHash))
	return err == nil && ok
}

// Authenticate checks the password and records the outcome.
// Repeated failures lock the account for LockDuration.
func (u *User) Authenticate(password string, now time.Time) error {
	if !u.IsActive {
		return ErrBadLogin
	}
	if u.IsLocked(now) {
		return ErrLocked
	}
	if !u.VerifyPassword(password) {
		u.FailedAttempts++
		if u.FailedAttempts >= MaxFailedAttempts {
			until := now.Add(LockDuration)
			u.LockedUntil = &until
			u.FailedAttempts = 0
		}
		u.UpdatedAt = now
		return ErrBadLogin
	}

	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
	u.UpdatedAt = now
	return nil
}

// IsLocked returns true while a lockout is in force
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Deactivate disables the account
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	if !letterRegex.MatchString(password) || !numberRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
