package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	JWTSecret       string

	DB    DBConfig
	Redis RedisConfig

	EventBroker      string
	RabbitMQURL      string
	RabbitMQExchange string
	KafkaBrokers     []string
	KafkaTopic       string
}

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Addr           string
	DB             int
	OrderCacheTTL  time.Duration
	IdempotencyTTL time.Duration
}

// Load reads the process environment. A .env file in the working directory
// is applied first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:            env("PORT", "8080"),
		LogLevel:        env("LOG_LEVEL", "info"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		DB: DBConfig{
			Driver:          strings.ToLower(env("DB_DRIVER", "mysql")),
			DSN:             os.Getenv("DB_DSN"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 20),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: envDuration("DB_CONN_MAX_IDLE_TIME", time.Minute),
		},
		Redis: RedisConfig{
			Addr:           os.Getenv("REDIS_ADDR"),
			DB:             envInt("REDIS_DB", 0),
			OrderCacheTTL:  envDuration("ORDER_CACHE_TTL", 10*time.Second),
			IdempotencyTTL: envDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		EventBroker:      strings.ToLower(env("EVENT_BROKER", "none")),
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange: env("RABBITMQ_EXCHANGE", "order.exchange"),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:       env("KAFKA_TOPIC", "order.events"),
	}

	if cfg.DB.DSN == "" && cfg.DB.Driver == "mysql" {
		cfg.DB.DSN = mysqlDSNFromParts()
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	switch c.DB.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("config: DB_DSN is required for driver %s", c.DB.Driver)
	}
	switch c.EventBroker {
	case "none":
	case "rabbitmq":
		if c.RabbitMQURL == "" {
			return fmt.Errorf("config: RABBITMQ_URL is required when EVENT_BROKER=rabbitmq")
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("config: KAFKA_BROKERS is required when EVENT_BROKER=kafka")
		}
	default:
		return fmt.Errorf("config: unsupported EVENT_BROKER %q", c.EventBroker)
	}
	return nil
}

func mysqlDSNFromParts() string {
	host := os.Getenv("MYSQL_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		os.Getenv("MYSQL_USER"),
		os.Getenv("MYSQL_PASSWORD"),
		host,
		env("MYSQL_PORT", "3306"),
		os.Getenv("MYSQL_DATABASE"),
	)
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
