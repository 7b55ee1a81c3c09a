package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	orderKeyPrefix = "orders:"
	orderGenPrefix = "ordergen:"
)

// OrderCache keeps serialized order listings per requester scope. Failures
// are logged and treated as misses.
//
// Each scope has a generation counter. Listings are stored under the
// generation that was current when the read started and Invalidate bumps the
// counter, so a listing read before an invalidation is never served after it.
type OrderCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewOrderCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *OrderCache {
	return &OrderCache{rdb: rdb, ttl: ttl, log: log}
}

// GetOrders returns the cached listing and the scope's current generation.
// On a miss the generation is what SetOrders must be called with.
func (c *OrderCache) GetOrders(ctx context.Context, scope string) ([]domain.Order, uint64, bool) {
	gen, err := c.rdb.Get(ctx, orderGenPrefix+scope).Uint64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn("order cache generation read failed", "scope", scope, "err", err)
		return nil, 0, false
	}

	b, err := c.rdb.Get(ctx, listKey(scope, gen)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("order cache read failed", "scope", scope, "err", err)
		}
		return nil, gen, false
	}
	var orders []domain.Order
	if err := json.Unmarshal(b, &orders); err != nil {
		c.log.Warn("order cache entry corrupt", "scope", scope, "err", err)
		return nil, gen, false
	}
	return orders, gen, true
}

func (c *OrderCache) SetOrders(ctx context.Context, scope string, gen uint64, orders []domain.Order) {
	data, err := json.Marshal(orders)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, listKey(scope, gen), data, c.ttl).Err(); err != nil {
		c.log.Warn("order cache write failed", "scope", scope, "err", err)
	}
}

func (c *OrderCache) Invalidate(ctx context.Context, scopes ...string) {
	if len(scopes) == 0 {
		return
	}
	_, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, s := range scopes {
			p.Incr(ctx, orderGenPrefix+s)
		}
		return nil
	})
	if err != nil {
		c.log.Warn("order cache invalidation failed", "scopes", scopes, "err", err)
	}
}

func listKey(scope string, gen uint64) string {
	return orderKeyPrefix + scope + ":" + strconv.FormatUint(gen, 10)
}
