package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("MYSQL_HOST", "db")
	t.Setenv("MYSQL_USER", "shop")
	t.Setenv("MYSQL_PASSWORD", "pw")
	t.Setenv("MYSQL_DATABASE", "storefront")
	t.Setenv("MYSQL_PORT", "")
	t.Setenv("EVENT_BROKER", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "shop:pw@tcp(db:3306)/storefront?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DB.DSN)
	assert.Equal(t, "none", cfg.EventBroker)
	assert.Equal(t, 10*time.Second, cfg.Redis.OrderCacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://u:p@localhost:5432/shop")
	t.Setenv("EVENT_BROKER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ORDER_CACHE_TTL", "30s")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.Redis.OrderCacheTTL)
	assert.Equal(t, 7, cfg.DB.MaxOpenConns)
}

func TestValidate(t *testing.T) {
	base := Config{
		JWTSecret:   "s",
		DB:          DBConfig{Driver: "mysql", DSN: "dsn"},
		EventBroker: "none",
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: "JWT_SECRET"},
		{name: "bad driver", mutate: func(c *Config) { c.DB.Driver = "mongo" }, wantErr: "DB_DRIVER"},
		{name: "missing dsn", mutate: func(c *Config) { c.DB.DSN = "" }, wantErr: "DB_DSN"},
		{name: "rabbit without url", mutate: func(c *Config) { c.EventBroker = "rabbitmq" }, wantErr: "RABBITMQ_URL"},
		{name: "kafka without brokers", mutate: func(c *Config) { c.EventBroker = "kafka" }, wantErr: "KAFKA_BROKERS"},
		{name: "unknown broker", mutate: func(c *Config) { c.EventBroker = "sqs" }, wantErr: "EVENT_BROKER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
