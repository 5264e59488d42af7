package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockPrice is a price observed from the quote provider.
type StockPrice struct {
	ID        uint   `gorm:"primaryKey"`
	Symbol    string `gorm:"index"`
	Name      string
	Price     decimal.Decimal `gorm:"type:numeric(14,4)"`
	Timestamp time.Time       `gorm:"index"`
}
