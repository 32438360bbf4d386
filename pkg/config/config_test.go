package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.Ledger.LockTimeout)
	assert.False(t, cfg.Ledger.AllowNegativeStock)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Empty(t, cfg.Redis.Addr, "sin Redis por defecto")
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("LEDGER_ALLOW_NEGATIVE_STOCK", "true")
	t.Setenv("LEDGER_NEGATIVE_ALLOWANCE", "2.5")
	t.Setenv("LEDGER_LOCK_TIMEOUT_MS", "250")
	t.Setenv("WORKER_CONCURRENCY", "3")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_MAX_CONNS", "10")
	t.Setenv("DB_FORCE_IPV4", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.True(t, cfg.Ledger.AllowNegativeStock)
	assert.Equal(t, "2.5", cfg.Ledger.NegativeAllowance)
	assert.Equal(t, 250*time.Millisecond, cfg.Ledger.LockTimeout)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.True(t, cfg.DB.ForceIPv4)
}

func TestLoad_Validaciones(t *testing.T) {
	t.Run("driver inválido", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "mongo")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("secreto obligatorio en production", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "memory")
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("mínimo de conexiones mayor que el máximo", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "memory")
		t.Setenv("DB_MIN_CONNS", "30")
		_, err := Load()
		require.Error(t, err)
	})
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/ledger?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
