package cache

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestOrderCache_RoundTrip(t *testing.T) {
	mr, rdb := newRedis(t)
	c := NewOrderCache(rdb, 10*time.Second, logging.Discard())
	ctx := context.Background()

	_, gen, ok := c.GetOrders(ctx, "owner:u1")
	assert.False(t, ok)
	assert.Equal(t, uint64(0), gen)

	orders := []domain.Order{{
		ID:          "o-1",
		OwnerID:     "u1",
		TotalAmount: 300,
		Status:      domain.StatusPending,
		Items: []domain.OrderItem{{
			ProductID: 7,
			Product:   &domain.ProductRef{ID: 7, Name: "Mug", Price: 100},
			Quantity:  3,
			Price:     100,
		}},
	}}
	c.SetOrders(ctx, "owner:u1", gen, orders)
	assert.True(t, mr.Exists("orders:owner:u1:0"))

	got, _, ok := c.GetOrders(ctx, "owner:u1")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "o-1", got[0].ID)
	assert.Equal(t, int64(300), got[0].TotalAmount)
	assert.Equal(t, uint64(7), got[0].Items[0].ProductID)
	assert.Equal(t, "Mug", got[0].Items[0].Product.Name)

	mr.FastForward(11 * time.Second)
	_, _, ok = c.GetOrders(ctx, "owner:u1")
	assert.False(t, ok)
}

func TestOrderCache_Invalidate(t *testing.T) {
	_, rdb := newRedis(t)
	c := NewOrderCache(rdb, time.Minute, logging.Discard())
	ctx := context.Background()

	c.SetOrders(ctx, "all", 0, []domain.Order{})
	c.SetOrders(ctx, "owner:u1", 0, []domain.Order{})
	c.SetOrders(ctx, "owner:u2", 0, []domain.Order{})

	c.Invalidate(ctx, "all", "owner:u1")

	_, gen, ok := c.GetOrders(ctx, "all")
	assert.False(t, ok)
	assert.Equal(t, uint64(1), gen)
	_, _, ok = c.GetOrders(ctx, "owner:u1")
	assert.False(t, ok)
	_, _, ok = c.GetOrders(ctx, "owner:u2")
	assert.True(t, ok)
}

func TestOrderCache_ListingReadBeforeInvalidateIsNotServed(t *testing.T) {
	_, rdb := newRedis(t)
	c := NewOrderCache(rdb, time.Minute, logging.Discard())
	ctx := context.Background()
	stale := []domain.Order{{ID: "o-1", OwnerID: "u1"}}
	fresh := []domain.Order{{ID: "o-1", OwnerID: "u1"}, {ID: "o-2", OwnerID: "u1"}}

	_, gen, ok := c.GetOrders(ctx, "owner:u1")
	require.False(t, ok)
	c.Invalidate(ctx, "owner:u1")
	c.SetOrders(ctx, "owner:u1", gen, stale)

	_, gen, ok = c.GetOrders(ctx, "owner:u1")
	require.False(t, ok)

	c.SetOrders(ctx, "owner:u1", gen, fresh)
	got, _, ok := c.GetOrders(ctx, "owner:u1")
	require.True(t, ok)
	assert.Len(t, got, 2)
}

func TestOrderCache_CorruptEntryIsMiss(t *testing.T) {
	mr, rdb := newRedis(t)
	c := NewOrderCache(rdb, time.Minute, logging.Discard())
	require.NoError(t, mr.Set("orders:all:0", "{not json"))

	_, _, ok := c.GetOrders(context.Background(), "all")
	assert.False(t, ok)
}

func TestIdempotencyStore(t *testing.T) {
	mr, rdb := newRedis(t)
	s := NewIdempotencyStore(rdb, time.Hour)
	ctx := context.Background()
	key := s.Key("orders", "u1", "abc")
	assert.Equal(t, "idem:orders:u1:abc", key)

	seen, err := s.Seen(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = s.Seen(ctx, key)
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, s.Release(ctx, key))
	seen, err = s.Seen(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen)

	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists(key))
}
