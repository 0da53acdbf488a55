// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SetResetToken(ctx context.Context, userID uint, hash string, expire time.Time) error
	ClearResetToken(ctx context.Context, userID uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByResetTokenHash returns the user holding an unexpired reset token with
// the given digest, or (nil, nil) when no such user exists.
func (r *userRepository) GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expire > ?", hash, time.Now()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Email is already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Email is already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// SetResetToken stores the reset-token digest and its expiry together.
func (r *userRepository) SetResetToken(ctx context.Context, userID uint, hash string, expire time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"reset_password_token":  hash,
			"reset_password_expire": expire,
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ClearResetToken nulls both reset fields together.
func (r *userRepository) ClearResetToken(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"reset_password_token":  nil,
			"reset_password_expire": nil,
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite phrasing for tests.
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
