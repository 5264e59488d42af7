package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashScale is the number of fractional digits kept for cash balances.
const CashScale = 2

// User is a registered account. Cash only changes together with a
// Transaction insert.
type User struct {
	ID        uint            `gorm:"primaryKey"`
	Username  string          `gorm:"uniqueIndex;not null"`
	Hash      string          `gorm:"not null"`
	Cash      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt time.Time

	Transactions []Transaction `gorm:"constraint:OnDelete:RESTRICT"`
}

// AfterFind restores the column scale. sqlite hands numeric columns back
// as float64, which may carry binary noise past the second digit.
func (u *User) AfterFind(tx *gorm.DB) error {
	u.Cash = u.Cash.Round(CashScale)
	return nil
}
