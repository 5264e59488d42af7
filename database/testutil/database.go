package testutil

import (
	"path/filepath"
	"testing"

	"stocks-simulator/database"
	"stocks-simulator/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDatabase opens a migrated sqlite database in a temporary
// directory. It is closed when the test finishes.
func SetupTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "finance_test.db")
	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(path)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// CreateTestUser inserts a user with the given cash balance.
func CreateTestUser(t *testing.T, db *gorm.DB, username string, cash string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Hash:     "not-a-real-hash",
		Cash:     decimal.RequireFromString(cash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestTransaction appends a ledger row for the user.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, symbol string, shares int64, price string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID: userID,
		Symbol: symbol,
		Shares: shares,
		Price:  decimal.RequireFromString(price),
	}
	require.NoError(t, db.Create(tx).Error)
	return tx
}
