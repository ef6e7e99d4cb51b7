package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate
type UserModel struct {
	AggregateModel
	Email             string        `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name              string        `gorm:"type:varchar(100);not null"`
	Phone             string        `gorm:"type:varchar(20)"`
	PasswordHash      string        `gorm:"type:varchar(255);not null"`
	Role              identity.Role `gorm:"type:varchar(20);not null;default:'CUSTOMER'"`
	IsActive          bool          `gorm:"not null"`
	LastLoginAt       *time.Time
	FailedAttempts    int `gorm:"not null;default:0"`
	LockedUntil       *time.Time
	PasswordChangedAt *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		Name:              m.Name,
		Phone:             m.Phone,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		IsActive:          m.IsActive,
		LastLoginAt:       m.LastLoginAt,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
		PasswordChangedAt: m.PasswordChangedAt,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.Name = u.Name
	m.Phone = u.Phone
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.IsActive = u.IsActive
	m.LastLoginAt = u.LastLoginAt
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
	m.PasswordChangedAt = u.PasswordChangedAt
}

// PasswordResetModel stores the hash of a single-use reset secret
type PasswordResetModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:char(64);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PasswordResetModel) TableName() string {
	return "password_reset_tokens"
}

// ToDomain converts the persistence model to a domain PasswordResetToken
func (m *PasswordResetModel) ToDomain() *identity.PasswordResetToken {
	return &identity.PasswordResetToken{
		ID:        m.ID,
		UserID:    m.UserID,
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt,
		UsedAt:    m.UsedAt,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain PasswordResetToken
func (m *PasswordResetModel) FromDomain(t *identity.PasswordResetToken) {
	m.ID = t.ID
	m.UserID = t.UserID
	m.TokenHash = t.TokenHash
	m.ExpiresAt = t.ExpiresAt
	m.UsedAt = t.UsedAt
	m.CreatedAt = t.CreatedAt
}
