package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/logger"
)

// releaseScript deletes the key only while it still maps to the caller's id.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IdempotencyRepository maps idempotency keys to transaction ids in Redis
// while the transaction is being created. Once stored, the unique key column
// answers replays, so a reservation only has to outlive one create call.
type IdempotencyRepository struct {
	client *redis.Client
	exp    time.Duration // how long a reservation is held
}

// NewIdempotencyRepository creates a repository whose reservations expire
// after expiration. A creator that dies before storing its transaction
// blocks the key for at most that long.
func NewIdempotencyRepository(client *redis.Client, expiration time.Duration) *IdempotencyRepository {
	return &IdempotencyRepository{client: client, exp: expiration}
}

func idempotencyKey(key string) string {
	return "idempotency:" + key
}

// Reserve binds key to transactionID unless it is already bound. It returns
// the id the key is bound to and whether this call made the binding.
func (r *IdempotencyRepository) Reserve(ctx context.Context, key, transactionID string) (string, bool, error) {
	k := idempotencyKey(key)

	ok, err := r.client.SetNX(ctx, k, transactionID, r.exp).Result()
	logger.Log.Infow("redis", "key", k, "value", transactionID, "result", ok, "error", err)
	if err != nil {
		return "", false, errs.Store("reserve idempotency key", err)
	}
	if ok {
		return transactionID, true, nil
	}

	owner, err := r.client.Get(ctx, k).Result()
	logger.Log.Infow("redis", "key", k, "result", owner, "error", err)
	if errors.Is(err, redis.Nil) {
		// Expired or released between SETNX and GET.
		return "", false, errs.ErrIdempotencyInProgress
	}
	if err != nil {
		return "", false, errs.Store("get idempotency key", err)
	}
	return owner, false, nil
}

// Release removes the binding made by Reserve, if it still belongs to transactionID.
func (r *IdempotencyRepository) Release(ctx context.Context, key, transactionID string) error {
	k := idempotencyKey(key)

	n, err := releaseScript.Run(ctx, r.client, []string{k}, transactionID).Int()
	logger.Log.Infow("redis", "key", k, "value", transactionID, "result", n, "error", err)
	return errs.Store("release idempotency key", err)
}
