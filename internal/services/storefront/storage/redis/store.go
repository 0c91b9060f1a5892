// Package redis provides the user cache backed by Redis, for deployments
// that run more than one storefront instance.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/anvistudio/storefront/internal/services/storefront/storage"
)

const keyPrefix = "sf:user:"

// Store keeps cached users in Redis with native key expiry.
type Store struct {
	client *goredis.Client
	now    func() time.Time
}

type record struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	SeenAt      int64  `json:"seen_at"`
	ExpiresAt   int64  `json:"expires_at,omitempty"`
}

// Open connects to the Redis server at rawURL and waits up to wait for it
// to answer a PING.
func Open(ctx context.Context, rawURL string, wait time.Duration) (*Store, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := waitForPing(ctx, client, wait); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Store{client: client, now: time.Now}, nil
}

// New wraps an existing client.
func New(client *goredis.Client) *Store {
	return &Store{client: client, now: time.Now}
}

func waitForPing(ctx context.Context, client *goredis.Client, wait time.Duration) error {
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("redis ping attempt=%d err=%v", attempt, err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(wait),
	)
	if err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// GetUser loads a cache entry by key.
func (s *Store) GetUser(ctx context.Context, key string) (storage.CachedUser, bool, error) {
	if s == nil || s.client == nil {
		return storage.CachedUser{}, false, fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return storage.CachedUser{}, false, fmt.Errorf("cache key is required")
	}
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return storage.CachedUser{}, false, nil
	}
	if err != nil {
		return storage.CachedUser{}, false, fmt.Errorf("get cached user: %w", err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return storage.CachedUser{}, false, fmt.Errorf("decode cached user: %w", err)
	}
	user := storage.CachedUser{
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		SeenAt:      unixMillisToTime(rec.SeenAt),
		ExpiresAt:   unixMillisToTime(rec.ExpiresAt),
	}
	if user.Expired(s.now()) {
		return storage.CachedUser{}, false, nil
	}
	return user, true, nil
}

// PutUser stores a cache entry. The Redis key expires with the entry.
func (s *Store) PutUser(ctx context.Context, key string, user storage.CachedUser) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("cache key is required")
	}
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return fmt.Errorf("cached user email is required")
	}
	now := s.now().UTC()
	if user.SeenAt.IsZero() {
		user.SeenAt = now
	}
	var ttl time.Duration
	if !user.ExpiresAt.IsZero() {
		ttl = user.ExpiresAt.Sub(now)
		if ttl <= 0 {
			return s.DeleteUser(ctx, key)
		}
	}
	payload, err := json.Marshal(record{
		Email:       user.Email,
		DisplayName: strings.TrimSpace(user.DisplayName),
		SeenAt:      timeToUnixMillis(user.SeenAt),
		ExpiresAt:   timeToUnixMillis(user.ExpiresAt),
	})
	if err != nil {
		return fmt.Errorf("encode cached user: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("put cached user: %w", err)
	}
	return nil
}

// DeleteUser removes a cache entry by key.
func (s *Store) DeleteUser(ctx context.Context, key string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("cache key is required")
	}
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete cached user: %w", err)
	}
	return nil
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ storage.UserCache = (*Store)(nil)
