package database

import (
	"context"
	"fmt"

	"stocks-simulator/models"

	"gorm.io/gorm"
)

// InsertTransaction appends a ledger row.
func InsertTransaction(ctx context.Context, tx *gorm.DB, t *models.Transaction) error {
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// Holdings returns the user's net share count per symbol, omitting symbols
// that net to zero, ordered by symbol.
func Holdings(ctx context.Context, db *gorm.DB, userID uint) ([]models.Holding, error) {
	var holdings []models.Holding
	err := db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("symbol, CAST(SUM(shares) AS BIGINT) AS shares").
		Where("user_id = ?", userID).
		Group("symbol").
		Having("SUM(shares) <> 0").
		Order("symbol").
		Scan(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings for user %d: %w", userID, err)
	}
	return holdings, nil
}

// HoldingOf returns the user's net share count for one symbol.
func HoldingOf(ctx context.Context, db *gorm.DB, userID uint, symbol string) (int64, error) {
	var shares int64
	err := db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("CAST(COALESCE(SUM(shares), 0) AS BIGINT)").
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Scan(&shares).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get holding of %s for user %d: %w", symbol, userID, err)
	}
	return shares, nil
}

// ListTransactions returns the user's ledger newest first.
func ListTransactions(ctx context.Context, db *gorm.DB, userID uint) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("time DESC").
		Order("id DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %d: %w", userID, err)
	}
	return transactions, nil
}

// RecordPrice stores an observed quote.
func RecordPrice(ctx context.Context, db *gorm.DB, price *models.StockPrice) error {
	if err := db.WithContext(ctx).Create(price).Error; err != nil {
		return fmt.Errorf("failed to record price of %s: %w", price.Symbol, err)
	}
	return nil
}
