package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var errUserNotFound = shared.NewDomainError("USER_NOT_FOUND", "User not found")

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user. A duplicate email maps to identity.ErrEmailTaken.
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := &models.UserModel{}
	model.FromDomain(user)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserModel{}).Where("email = ?", model.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return identity.ErrEmailTaken
		}
		return tx.Create(model).Error
	})
	return err
}

// Update saves every field of an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	model := &models.UserModel{}
	model.FromDomain(user)
	result := r.db.WithContext(ctx).Model(model).Select("*").Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errUserNotFound
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, errUserNotFound)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by email, ignoring case
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error
	if err != nil {
		return nil, mapNotFound(err, errUserNotFound)
	}
	return model.ToDomain(), nil
}

// ExistsByEmail checks if an email already exists
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

// GormPasswordResetRepository implements identity.PasswordResetRepository using GORM
type GormPasswordResetRepository struct {
	db *gorm.DB
}

// NewGormPasswordResetRepository creates a new GormPasswordResetRepository
func NewGormPasswordResetRepository(db *gorm.DB) *GormPasswordResetRepository {
	return &GormPasswordResetRepository{db: db}
}

// Save creates or updates a reset token
func (r *GormPasswordResetRepository) Save(ctx context.Context, token *identity.PasswordResetToken) error {
	model := &models.PasswordResetModel{}
	model.FromDomain(token)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByHash finds a token by the hash of its secret
func (r *GormPasswordResetRepository) FindByHash(ctx context.Context, hash string) (*identity.PasswordResetToken, error) {
	var model models.PasswordResetModel
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&model).Error; err != nil {
		return nil, mapNotFound(err, identity.ErrResetTokenInvalid)
	}
	return model.ToDomain(), nil
}

// InvalidateForUser marks every unused token of the user as used
func (r *GormPasswordResetRepository) InvalidateForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.PasswordResetModel{}).
		Where("user_id = ? AND used_at IS NULL", userID).
		Update("used_at", time.Now()).Error
}

var _ identity.PasswordResetRepository = (*GormPasswordResetRepository)(nil)
