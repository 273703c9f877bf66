package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OrderGuard admits one payment creation per backend order id within the TTL
// window. Gateway transaction creation wants exactly-once; a duplicate
// order-placed signal must not mint a second transaction.
type OrderGuard interface {
	Seen(ctx context.Context, orderID string) (bool, error)
}

type redisOrderGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (g *redisOrderGuard) Seen(ctx context.Context, orderID string) (bool, error) {
	key := g.prefix + ":" + orderID
	ok, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => key exists => a payment was already requested
	return !ok, nil
}

type memoryOrderGuard struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryOrderGuard(ttl time.Duration) *memoryOrderGuard {
	now := time.Now()
	return &memoryOrderGuard{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
	}
}

func (g *memoryOrderGuard) Seen(_ context.Context, orderID string) (bool, error) {
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if exp, ok := g.seen[orderID]; ok && exp.After(now) {
		return true, nil
	}

	g.seen[orderID] = now.Add(g.ttl)
	if now.After(g.nextGC) {
		for id, exp := range g.seen {
			if exp.Before(now) {
				delete(g.seen, id)
			}
		}
		g.nextGC = now.Add(g.ttl)
	}

	return false, nil
}

// NewOrderGuard builds a Redis guard and falls back to in-memory on failure.
func NewOrderGuard(addr, pass string, db int, ttl time.Duration) (OrderGuard, error) {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if addr == "" {
		return newMemoryOrderGuard(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryOrderGuard(ttl), err
	}

	return &redisOrderGuard{
		client: client,
		prefix: "mollie:order",
		ttl:    ttl,
	}, nil
}
