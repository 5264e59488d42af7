package trading

import (
	"stocks-simulator/models"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD formats an amount as US dollars, e.g. $1,234.56.
func USD(amount decimal.Decimal) string {
	cur := money.New(0, money.USD).Currency()
	cents := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(cents.IntPart())
}

func purchaseCost(price decimal.Decimal, shares int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(shares)).RoundCeil(models.CashScale)
}

func saleProceeds(price decimal.Decimal, shares int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(shares)).RoundFloor(models.CashScale)
}
