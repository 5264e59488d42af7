package config

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.EqualError(t, err, "API_KEY not set")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "demo")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("STARTING_CASH", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("QUOTE_CACHE_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.APIKey)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.True(t, cfg.StartingCash.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.QuoteCacheTTL)
	assert.Len(t, cfg.JWTSecret, 64, "a random secret is generated when none is configured")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_KEY", "demo")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STARTING_CASH", "2500.50")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("QUOTE_CACHE_TTL", "30s")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "2500.5", cfg.StartingCash.String())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.QuoteCacheTTL)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"negative cash", "STARTING_CASH", "-1"},
		{"malformed cash", "STARTING_CASH", "lots"},
		{"malformed ttl", "SESSION_TTL", "forever"},
		{"malformed redis db", "REDIS_DB", "zero"},
		{"unknown driver", "DB_DRIVER", "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("API_KEY", "demo")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_PostgresNeedsHost(t *testing.T) {
	t.Setenv("API_KEY", "demo")
	t.Setenv("DB_DRIVER", DriverPostgres)
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "finance", DBPort: "5432"}

	assert.Equal(t, "host=db user=u password=p dbname=finance port=5432 sslmode=disable", cfg.DSN())
}

func TestOpenDB_SQLite(t *testing.T) {
	cfg := &Config{DBDriver: DriverSQLite, DBPath: t.TempDir() + "/finance.db"}

	db, err := OpenDB(cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	assert.NoError(t, sqlDB.Close())
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := OpenRedis(context.Background(), &Config{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()

	mr.Close()
	_, err = OpenRedis(context.Background(), &Config{RedisAddr: mr.Addr()})
	assert.Error(t, err)
}
