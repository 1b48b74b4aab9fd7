// Package cache stores parse results in Redis keyed by the digest of the
// uploaded bytes, so re-uploading an unchanged file skips parsing.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/core"
)

// ResultCache is a Redis-backed cache of parse results.
type ResultCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a ResultCache. Keys are written as "<prefix>:parse:<digest>".
func New(client *redis.Client, prefix string, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, prefix: prefix, ttl: ttl}
}

// Digest returns the hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (c *ResultCache) key(digest string) string {
	return c.prefix + ":parse:" + digest
}

// Get returns the cached result for digest. A miss returns (nil, false, nil).
func (c *ResultCache) Get(ctx context.Context, digest string) (*core.ParseResult, bool, error) {
	raw, err := c.client.Get(ctx, c.key(digest)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", digest, err)
	}

	var result core.ParseResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", digest, err)
	}
	return &result, true, nil
}

// Set stores result under digest with the cache TTL. Fatal results are not
// cached.
func (c *ResultCache) Set(ctx context.Context, digest string, result *core.ParseResult) error {
	if result.Fatal() {
		return nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", digest, err)
	}
	if err := c.client.Set(ctx, c.key(digest), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", digest, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
