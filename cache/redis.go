// redis.go - Redis-backed JSON cache for the public job listing

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenJobsKey names the cached public job listing.
const OpenJobsKey = "jobs:open"

// VersionedKey is the key holding the value of name at generation gen.
// Readers only look at the current generation, so a value written under an
// older one is never served again.
func VersionedKey(name string, gen int64) string {
	return fmt.Sprintf("%s:v%d", name, gen)
}

func generationKey(name string) string { return name + ":gen" }

// Redis is a JSON cache that turns into a no-op when Redis cannot be reached,
// so the API keeps serving from the database.
type Redis struct {
	client *redis.Client
	ttl    time.Duration

	warnedUnavailable atomic.Bool
}

// NewRedis connects to addr. An empty addr or a failed ping yields a disabled cache.
func NewRedis(addr, password string, ttl time.Duration) *Redis {
	if addr == "" {
		return &Redis{ttl: ttl}
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[cache] redis unavailable at %s, bypassing cache: %v", addr, err)
		_ = client.Close()
		return &Redis{ttl: ttl}
	}
	log.Printf("[cache] redis connected at %s", addr)
	return &Redis{client: client, ttl: ttl}
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Enabled reports whether a Redis connection is in use.
func (r *Redis) Enabled() bool {
	return r != nil && r.client != nil
}

// GetJSON decodes the value at key into out. A miss returns (false, nil).
func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if !r.Enabled() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnOnce(err)
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value at key for the configured TTL.
func (r *Redis) SetJSON(ctx context.Context, key string, value any) error {
	if !r.Enabled() {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, r.ttl).Err(); err != nil {
		r.warnOnce(err)
		return err
	}
	return nil
}

// Generation returns the current generation of name; 0 until the first Invalidate.
func (r *Redis) Generation(ctx context.Context, name string) (int64, error) {
	if !r.Enabled() {
		return 0, nil
	}
	gen, err := r.client.Get(ctx, generationKey(name)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		r.warnOnce(err)
		return 0, err
	}
	return gen, nil
}

// Invalidate moves name to a new generation. Values cached under older
// generations expire on their own TTL.
func (r *Redis) Invalidate(ctx context.Context, name string) error {
	if !r.Enabled() {
		return nil
	}
	if err := r.client.Incr(ctx, generationKey(name)).Err(); err != nil {
		r.warnOnce(err)
		return err
	}
	return nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) warnOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		log.Printf("[cache] redis error, falling back to database: %v", err)
	}
}
