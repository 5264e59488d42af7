package database

import (
	"context"
	"errors"
	"fmt"

	"stocks-simulator/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateUser inserts a new user. It returns ErrDuplicateKey when the
// username is taken.
func CreateUser(ctx context.Context, db *gorm.DB, user *models.User) error {
	exists, err := UsernameExists(ctx, db, user.Username)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateKey
	}

	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}
	return nil
}

// UsernameExists reports whether a user with exactly this username exists.
func UsernameExists(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check username %q: %w", username, err)
	}
	return count > 0, nil
}

// FindUserByUsername returns ErrUserNotFound when no user matches.
func FindUserByUsername(ctx context.Context, db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return &user, nil
}

// FindUserByID returns ErrUserNotFound when no user matches.
func FindUserByID(ctx context.Context, db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// LockUser reads a user row with a row lock held until the surrounding
// transaction ends. Dialects without row locks (sqlite) ignore the lock.
func LockUser(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", id, err)
	}
	return &user, nil
}

// SetCash stores a balance the caller computed from a row read with
// LockUser in the same transaction.
func SetCash(ctx context.Context, tx *gorm.DB, id uint, cash decimal.Decimal) error {
	result := tx.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("cash", cash.Round(models.CashScale))
	if result.Error != nil {
		return fmt.Errorf("failed to update cash for user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
