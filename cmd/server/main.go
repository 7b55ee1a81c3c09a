package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	orderhttp "storefront/internal/controllers/http"
	"storefront/internal/infra"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/database"
	"storefront/internal/infra/kafka"
	"storefront/internal/infra/rabbitmq"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/repository/gormrepo"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("order service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("order service shutdown complete")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DB, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	publisher, closePublisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	m := metrics.New()
	svc := services.NewOrderService(
		gormrepo.NewOrderRepository(db, log),
		gormrepo.NewProductRepository(db, log),
		publisher,
		m,
		log,
	)
	handler := orderhttp.NewHandler(svc, []byte(cfg.JWTSecret), log)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			DB:           cfg.Redis.DB,
			PoolSize:     200,
			MinIdleConns: 20,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer rdb.Close()
		svc.SetCache(cache.NewOrderCache(rdb, cfg.Redis.OrderCacheTTL, log))
		handler.SetIdempotencyStore(cache.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL))
	} else {
		log.Warn("REDIS_ADDR not set, order cache and idempotency keys disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), m.Middleware())
	r.GET("/healthz", orderhttp.HealthHandler(sqlDB.PingContext))
	r.GET("/metrics", gin.WrapH(m.Handler()))
	handler.RegisterRoutes(r)
	handler.RegisterRoutes(r.Group("/api"))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		svc.Wait()
		return err
	})
	return g.Wait()
}

func newPublisher(cfg config.Config, log *slog.Logger) (infra.EventPublisher, func(), error) {
	switch cfg.EventBroker {
	case "rabbitmq":
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, log)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	case "kafka":
		p := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		return p, func() { _ = p.Close() }, nil
	default:
		log.Info("event publishing disabled")
		return infra.NopPublisher{}, func() {}, nil
	}
}
