package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceScale is the number of fractional digits kept for share prices.
const PriceScale = 4

// Transaction is one append-only ledger row. Shares is positive for a buy
// and negative for a sell.
type Transaction struct {
	ID     uint            `gorm:"primaryKey"`
	UserID uint            `gorm:"index;not null"`
	Symbol string          `gorm:"index;not null"`
	Shares int64           `gorm:"not null"`
	Price  decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	Time   time.Time       `gorm:"autoCreateTime;index"`
}

func (t *Transaction) AfterFind(tx *gorm.DB) error {
	t.Price = t.Price.Round(PriceScale)
	return nil
}

// Holding is a user's derived position in one symbol.
type Holding struct {
	Symbol string
	Shares int64
}
