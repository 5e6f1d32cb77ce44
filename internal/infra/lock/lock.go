// Package lock provides a best-effort lease so only one instance runs a periodic job at a time.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"cinebooking/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// Release gives the lease back. Releasing a lease that already expired is a no-op.
type Release func(ctx context.Context) error

type Locker interface {
	// TryAcquire reports false without error when someone else holds the key.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (Release, bool, error)
}

// releaseScript deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client redis.UniversalClient
}

func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (Release, bool, error) {
	token, err := newToken()
	if err != nil {
		return nil, false, err
	}

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, errs.Wrapf(err, "acquire lock %s", key)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return errs.Wrapf(err, "release lock %s", key)
		}
		return nil
	}
	return release, true, nil
}

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", errs.Wrap(err, "generate lock token")
	}
	return hex.EncodeToString(b[:]), nil
}

// NoopLocker always grants the lease. Used for single-instance deployments.
type NoopLocker struct{}

func (NoopLocker) TryAcquire(context.Context, string, time.Duration) (Release, bool, error) {
	return func(context.Context) error { return nil }, true, nil
}
