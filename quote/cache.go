package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stocks-simulator/database"
	"stocks-simulator/models"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Cached serves quotes from Redis and falls through to the wrapped provider
// on a miss. Fresh prices are recorded in the stock_prices table.
type Cached struct {
	next Provider
	rdb  *redis.Client
	db   *gorm.DB
	ttl  time.Duration
}

// NewCached wraps next. db may be nil to skip price recording.
func NewCached(next Provider, rdb *redis.Client, db *gorm.DB, ttl time.Duration) *Cached {
	return &Cached{next: next, rdb: rdb, db: db, ttl: ttl}
}

func cacheKey(symbol string) string {
	return fmt.Sprintf("stock:%s:quote", symbol)
}

// Lookup returns a cached quote when one is available. Redis failures are
// logged and the provider is asked directly.
func (c *Cached) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	symbol = Normalize(symbol)
	if symbol == "" {
		return nil, ErrNotFound
	}

	cached, err := c.rdb.Get(ctx, cacheKey(symbol)).Result()
	switch {
	case err == nil:
		var q Quote
		if err := json.Unmarshal([]byte(cached), &q); err == nil {
			return &q, nil
		}
		log.WithField("symbol", symbol).Warn("Discarding unreadable cached quote")
	case !errors.Is(err, redis.Nil):
		log.WithError(err).WithField("symbol", symbol).Warn("Quote cache read failed")
	}

	q, err := c.next.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	c.store(ctx, symbol, q)
	return q, nil
}

func (c *Cached) store(ctx context.Context, symbol string, q *Quote) {
	data, err := json.Marshal(q)
	if err == nil {
		// Cache under both the requested and the canonical symbol.
		for _, key := range uniqueKeys(symbol, q.Symbol) {
			if err := c.rdb.Set(ctx, cacheKey(key), data, c.ttl).Err(); err != nil {
				log.WithError(err).WithField("symbol", key).Warn("Quote cache write failed")
			}
		}
	}

	if c.db == nil {
		return
	}
	price := &models.StockPrice{
		Symbol:    q.Symbol,
		Name:      q.Name,
		Price:     q.Price,
		Timestamp: time.Now(),
	}
	if err := database.RecordPrice(ctx, c.db, price); err != nil {
		log.WithError(err).WithField("symbol", q.Symbol).Warn("Failed to record stock price")
	}
}

func uniqueKeys(requested, canonical string) []string {
	canonical = Normalize(canonical)
	if canonical == "" || canonical == requested {
		return []string{requested}
	}
	return []string{requested, canonical}
}
