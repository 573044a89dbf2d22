// Package cache wraps the small set of redis operations the server needs:
// JSON value caching and the JWT logout denylist.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "denylist:"

// Get retrieves a value and unmarshals it into dest. The bool reports whether
// the key existed.
func Get(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(val), dest)
}

// Set stores a value as JSON with a TTL.
func Set(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

func Delete(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err()
}

// DenyToken records a logged-out access token until its natural expiry.
func DenyToken(ctx context.Context, rdb *redis.Client, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, denylistPrefix+token, "1", ttl).Err()
}

// IsTokenDenied reports whether a token has been logged out. Errors are
// treated as not-denied so an unavailable redis fails open for reads.
func IsTokenDenied(ctx context.Context, rdb *redis.Client, token string) bool {
	n, err := rdb.Exists(ctx, denylistPrefix+token).Result()
	return err == nil && n > 0
}
