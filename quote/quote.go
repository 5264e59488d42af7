package quote

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when the provider does not know the symbol.
var ErrNotFound = errors.New("symbol not found")

// Quote is the current market data for one symbol. Symbol is the
// provider's canonical form.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Provider resolves ticker symbols to quotes.
type Provider interface {
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}

// Normalize trims and upper-cases a user supplied ticker.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
