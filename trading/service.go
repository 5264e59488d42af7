package trading

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stocks-simulator/database"
	"stocks-simulator/models"
	"stocks-simulator/quote"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Position is one held symbol valued at the live price.
type Position struct {
	Symbol string
	Name   string
	Shares int64
	Price  decimal.Decimal
	Value  decimal.Decimal
}

// Portfolio is a user's cash plus current positions.
type Portfolio struct {
	Cash       decimal.Decimal
	Positions  []Position
	GrandTotal decimal.Decimal
}

// Service implements the simulator's account and trading operations.
type Service struct {
	db           *gorm.DB
	quotes       quote.Provider
	startingCash decimal.Decimal
}

// NewService creates a new trading service
func NewService(db *gorm.DB, quotes quote.Provider, startingCash decimal.Decimal) *Service {
	return &Service{
		db:           db,
		quotes:       quotes,
		startingCash: startingCash,
	}
}

// Register creates an account and returns its id. It does not log the
// user in.
func (s *Service) Register(ctx context.Context, username, password string) (uint, error) {
	if username == "" {
		return 0, invalid("username", "must provide username")
	}
	if password == "" {
		return 0, invalid("password", "must provide password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Hash:     string(hash),
		Cash:     s.startingCash,
	}
	if err := database.CreateUser(ctx, s.db, user); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			return 0, ErrUsernameTaken
		}
		return 0, err
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")
	return user.ID, nil
}

// Authenticate checks credentials and returns the user id. Unknown users
// and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (uint, error) {
	if username == "" {
		return 0, invalid("username", "must provide username")
	}
	if password == "" {
		return 0, invalid("password", "must provide password")
	}

	user, err := database.FindUserByUsername(ctx, s.db, username)
	if errors.Is(err, database.ErrUserNotFound) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)); err != nil {
		return 0, ErrInvalidCredentials
	}
	return user.ID, nil
}

// Quote resolves a ticker symbol.
func (s *Service) Quote(ctx context.Context, symbol string) (*quote.Quote, error) {
	symbol = quote.Normalize(symbol)
	if symbol == "" {
		return nil, invalid("symbol", "must provide symbol")
	}

	q, err := s.quotes.Lookup(ctx, symbol)
	if errors.Is(err, quote.ErrNotFound) {
		return nil, &NotFoundError{Symbol: symbol}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", symbol, err)
	}
	return q, nil
}

// ParseQuantity validates a share count from a form field.
func ParseQuantity(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, invalid("quantity", "quantity must be a positive whole number")
	}
	return n, nil
}

// Buy purchases quantity shares at the current price. The balance check,
// debit and ledger insert run in one transaction with the user row locked.
// The cost is rounded up to the cent.
func (s *Service) Buy(ctx context.Context, userID uint, symbol string, quantity int64) (*models.Transaction, error) {
	if quantity <= 0 {
		return nil, invalid("quantity", "quantity must be a positive whole number")
	}

	q, err := s.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	cost := purchaseCost(q.Price, quantity)

	record := &models.Transaction{
		UserID: userID,
		Symbol: q.Symbol,
		Shares: quantity,
		Price:  q.Price,
	}
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		user, err := database.LockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user.Cash.LessThan(cost) {
			return ErrInsufficientFunds
		}

		if err := database.SetCash(ctx, tx, userID, user.Cash.Sub(cost)); err != nil {
			return err
		}
		return database.InsertTransaction(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"symbol":  record.Symbol,
		"shares":  record.Shares,
		"price":   record.Price.String(),
	}).Info("Bought shares")
	return record, nil
}

// Sell sells quantity shares at the current price. It fails with
// ErrInsufficientShares rather than let a holding go negative. Proceeds are
// rounded down to the cent.
func (s *Service) Sell(ctx context.Context, userID uint, symbol string, quantity int64) (*models.Transaction, error) {
	if quantity <= 0 {
		return nil, invalid("quantity", "quantity must be a positive whole number")
	}

	q, err := s.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	proceeds := saleProceeds(q.Price, quantity)

	record := &models.Transaction{
		UserID: userID,
		Symbol: q.Symbol,
		Shares: -quantity,
		Price:  q.Price,
	}
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		// Serializes concurrent trades by the same user.
		user, err := database.LockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		held, err := database.HoldingOf(ctx, tx, userID, q.Symbol)
		if err != nil {
			return err
		}
		if quantity > held {
			return ErrInsufficientShares
		}

		if err := database.SetCash(ctx, tx, userID, user.Cash.Add(proceeds)); err != nil {
			return err
		}
		return database.InsertTransaction(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"symbol":  record.Symbol,
		"shares":  record.Shares,
		"price":   record.Price.String(),
	}).Info("Sold shares")
	return record, nil
}

// Holdings lists the user's nonzero positions without pricing them.
func (s *Service) Holdings(ctx context.Context, userID uint) ([]models.Holding, error) {
	return database.Holdings(ctx, s.db, userID)
}

// Portfolio values every nonzero holding at its live price.
func (s *Service) Portfolio(ctx context.Context, userID uint) (*Portfolio, error) {
	user, err := database.FindUserByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	holdings, err := database.Holdings(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	p := &Portfolio{
		Cash:       user.Cash,
		Positions:  make([]Position, 0, len(holdings)),
		GrandTotal: user.Cash,
	}
	for _, h := range holdings {
		q, err := s.quotes.Lookup(ctx, h.Symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to price %s: %w", h.Symbol, err)
		}

		value := q.Price.Mul(decimal.NewFromInt(h.Shares))
		p.Positions = append(p.Positions, Position{
			Symbol: h.Symbol,
			Name:   q.Name,
			Shares: h.Shares,
			Price:  q.Price,
			Value:  value,
		})
		p.GrandTotal = p.GrandTotal.Add(value)
	}
	return p, nil
}

// History returns the user's transactions newest first.
func (s *Service) History(ctx context.Context, userID uint) ([]models.Transaction, error) {
	return database.ListTransactions(ctx, s.db, userID)
}
