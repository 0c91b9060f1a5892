// Package storage declares persistence for storefront-owned advisory data.
//
// Nothing stored here decides access. The commerce API remains the only
// source of truth for who is signed in.
package storage

import (
	"context"
	"time"
)

// CachedUser is the last account seen for a browser credential. It is used
// to prefill the sign-in form after a session lapses.
type CachedUser struct {
	Email       string
	DisplayName string
	SeenAt      time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the entry is past its expiry at now.
func (u CachedUser) Expired(now time.Time) bool {
	return !u.ExpiresAt.IsZero() && !now.Before(u.ExpiresAt)
}

// UserCache stores CachedUser entries under opaque keys.
type UserCache interface {
	GetUser(ctx context.Context, key string) (CachedUser, bool, error)
	PutUser(ctx context.Context, key string, user CachedUser) error
	DeleteUser(ctx context.Context, key string) error
	Close() error
}
