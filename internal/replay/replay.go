// Package replay suppresses duplicate transactions at ingress. Payment
// switches retransmit on timeout; a transaction id that was already seen
// must be rejected before any backend call so the network never observes
// two responses for one transaction.
package replay

import (
	"context"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Store reserves a transaction id for the dedup window. Reserve reports
// true when the id was not seen before. Release frees a reservation so the
// id can be reserved again.
type Store interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisStore implements Store with a SETNX per transaction id.
type RedisStore struct {
	client *goredis.Client
}

func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, 1, ttl).Result()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Guard is the ingress dedup check. It degrades open: when the store is
// unreachable the transaction proceeds, because a missed duplicate is
// recoverable downstream while a falsely rejected authorization is not.
type Guard struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

func NewGuard(store Store, ttl time.Duration, logger *slog.Logger) *Guard {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Guard{store: store, ttl: ttl, logger: logger}
}

// Seen reports whether the transaction id was already processed within the
// dedup window.
func (g *Guard) Seen(ctx context.Context, transactionID string) bool {
	if g == nil || g.store == nil || transactionID == "" {
		return false
	}
	fresh, err := g.store.Reserve(ctx, guardKey(transactionID), g.ttl)
	if err != nil {
		g.logger.Warn("replay guard unavailable, proceeding",
			"transaction_id", transactionID,
			"error", err.Error(),
		)
		return false
	}
	return !fresh
}

// Forget releases a reservation taken by Seen. Called when the pipeline
// aborts without delivering a decision, so the switch retransmit is
// processed instead of rejected for the rest of the dedup window.
func (g *Guard) Forget(ctx context.Context, transactionID string) {
	if g == nil || g.store == nil || transactionID == "" {
		return
	}
	if err := g.store.Release(ctx, guardKey(transactionID)); err != nil {
		g.logger.Warn("replay guard release failed",
			"transaction_id", transactionID,
			"error", err.Error(),
		)
	}
}

func guardKey(transactionID string) string {
	return "authengine:txn:" + transactionID
}
