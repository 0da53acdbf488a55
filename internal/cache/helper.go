package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	postKeyPrefix = "post:%d"
	postsListKey  = "posts:all"
)

const (
	// PostTTL bounds staleness of cached post detail reads.
	PostTTL = 5 * time.Minute
	// ListTTL is short because the feed changes on every write.
	ListTTL = 30 * time.Second
)

// PostKey returns the cache key for a single post.
func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

// PostsListKey returns the cache key for the full post feed.
func PostsListKey() string {
	return postsListKey
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err != nil {
		// Treat any Redis failure (including redis.Nil) as a miss; the
		// caller falls back to the store.
		return false, nil
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which must populate dest),
// then stores the result with ttl. Cache writes are best-effort.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate removes a key from the cache.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost drops the cached detail view of a post.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidatePostsList drops the cached feed.
func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, postsListKey)
}
