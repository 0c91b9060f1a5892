// Package sqlite provides the user cache backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	sqlitemigrate "github.com/anvistudio/storefront/internal/platform/storage/sqlitemigrate"
	"github.com/anvistudio/storefront/internal/services/storefront/storage"
	"github.com/anvistudio/storefront/internal/services/storefront/storage/sqlite/migrations"
)

// Store provides SQLite-backed persistence for the user cache.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a user cache SQLite store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	if _, err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetUser loads an unexpired cache entry by key. Expired rows are removed.
func (s *Store) GetUser(ctx context.Context, key string) (storage.CachedUser, bool, error) {
	if s == nil || s.sqlDB == nil {
		return storage.CachedUser{}, false, fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return storage.CachedUser{}, false, fmt.Errorf("cache key is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT email, display_name, seen_at, expires_at
		 FROM user_cache
		 WHERE cache_key = ?`,
		key,
	)
	var user storage.CachedUser
	var seenAt int64
	var expiresAt int64
	if err := row.Scan(&user.Email, &user.DisplayName, &seenAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CachedUser{}, false, nil
		}
		return storage.CachedUser{}, false, fmt.Errorf("get cached user: %w", err)
	}
	user.SeenAt = unixMillisToTime(seenAt)
	user.ExpiresAt = unixMillisToTime(expiresAt)
	if user.Expired(s.now()) {
		if err := s.DeleteUser(ctx, key); err != nil {
			return storage.CachedUser{}, false, err
		}
		return storage.CachedUser{}, false, nil
	}
	return user, true, nil
}

// PutUser upserts a cache entry by key.
func (s *Store) PutUser(ctx context.Context, key string, user storage.CachedUser) error {
	if s == nil || s.sqlDB == nil {
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
	if user.SeenAt.IsZero() {
		user.SeenAt = s.now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO user_cache (cache_key, email, display_name, seen_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
		    email = excluded.email,
		    display_name = excluded.display_name,
		    seen_at = excluded.seen_at,
		    expires_at = excluded.expires_at`,
		key,
		user.Email,
		strings.TrimSpace(user.DisplayName),
		timeToUnixMillis(user.SeenAt),
		timeToUnixMillis(user.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("put cached user: %w", err)
	}
	return nil
}

// DeleteUser removes a cache entry by key.
func (s *Store) DeleteUser(ctx context.Context, key string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("cache key is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM user_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("delete cached user: %w", err)
	}
	return nil
}

// PurgeExpired deletes every entry that expired before now and reports how
// many rows were removed.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM user_cache WHERE expires_at > 0 AND expires_at <= ?`,
		timeToUnixMillis(now),
	)
	if err != nil {
		return 0, fmt.Errorf("purge expired cached users: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired cached users: %w", err)
	}
	return removed, nil
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
