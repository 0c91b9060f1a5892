// Package session decides, per request, whether the viewer is signed in.
//
// The commerce API is asked on every resolution. Any failure to get an
// answer is treated exactly like a signed-out viewer.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/anvistudio/storefront/internal/platform/timeouts"
	"github.com/anvistudio/storefront/internal/services/storefront/integration/commerceapi"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/sessioncookie"
	"github.com/anvistudio/storefront/internal/services/storefront/storage"
)

// User is the signed-in account summary.
type User struct {
	Email string
	Role  string
}

// DisplayName is the greeting name shown in page chrome.
func (u User) DisplayName() string {
	email := strings.TrimSpace(u.Email)
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// Session is the viewer's state for one request.
type Session struct {
	Authenticated bool
	User          *User
}

// Anonymous is the signed-out session.
func Anonymous() Session {
	return Session{}
}

// Backend is the part of the commerce API the gate needs.
type Backend interface {
	CheckSession(ctx context.Context) (commerceapi.SessionStatus, error)
	Logout(ctx context.Context) error
}

// Config wires a Gate.
type Config struct {
	Backend      Backend
	Cache        storage.UserCache
	CacheKey     []byte
	CacheTTL     time.Duration
	Policy       requestmeta.SchemePolicy
	CheckTimeout time.Duration
}

// Gate resolves sessions and performs local sign-out.
type Gate struct {
	backend      Backend
	cache        storage.UserCache
	cacheKey     []byte
	cacheTTL     time.Duration
	policy       requestmeta.SchemePolicy
	checkTimeout time.Duration
	now          func() time.Time
}

// NewGate builds a Gate. A nil Cache or empty CacheKey disables the
// last-known-user cache.
func NewGate(cfg Config) *Gate {
	checkTimeout := cfg.CheckTimeout
	if checkTimeout <= 0 {
		checkTimeout = timeouts.SessionCheck
	}
	gate := &Gate{
		backend:      cfg.Backend,
		policy:       cfg.Policy,
		checkTimeout: checkTimeout,
		cacheTTL:     cfg.CacheTTL,
		now:          time.Now,
	}
	if cfg.Cache != nil && len(cfg.CacheKey) > 0 {
		gate.cache = cfg.Cache
		gate.cacheKey = append([]byte(nil), cfg.CacheKey...)
	}
	return gate
}

// Resolve asks the commerce API who owns credential.
func (g *Gate) Resolve(ctx context.Context, credential string) Session {
	credential = strings.TrimSpace(credential)
	if g == nil || g.backend == nil || credential == "" {
		return Anonymous()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(commerceapi.WithCredential(ctx, credential), g.checkTimeout)
	defer cancel()

	status, err := g.backend.CheckSession(ctx)
	if err != nil {
		log.Printf("session check failed err=%v", err)
		return Anonymous()
	}
	if !status.Authenticated || status.User == nil {
		return Anonymous()
	}
	return Session{
		Authenticated: true,
		User:          &User{Email: status.User.Email, Role: status.User.Role},
	}
}

// ResolveRequest resolves the session for the credential cookie on r.
func (g *Gate) ResolveRequest(r *http.Request) Session {
	if r == nil {
		return Anonymous()
	}
	credential, ok := sessioncookie.Read(r)
	if !ok {
		return Anonymous()
	}
	return g.Resolve(r.Context(), credential)
}

// Begin stores credential as the browser session and remembers user.
func (g *Gate) Begin(w http.ResponseWriter, r *http.Request, credential string, user User) {
	if g == nil {
		return
	}
	sessioncookie.Write(w, r, credential, g.policy)
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	g.Remember(ctx, credential, user)
}

// Logout ends the API session and clears local state. Local state is
// cleared even when the API call fails.
func (g *Gate) Logout(w http.ResponseWriter, r *http.Request) {
	if g == nil {
		return
	}
	credential, ok := sessioncookie.Read(r)
	if ok && g.backend != nil {
		ctx, cancel := context.WithTimeout(commerceapi.WithCredential(r.Context(), credential), g.checkTimeout)
		if err := g.backend.Logout(ctx); err != nil {
			log.Printf("session logout failed err=%v", err)
		}
		cancel()
	}
	g.clearLocal(w, r, credential)
}

// Invalidate clears local state after the API rejected the credential.
func (g *Gate) Invalidate(w http.ResponseWriter, r *http.Request) {
	if g == nil {
		return
	}
	credential, _ := sessioncookie.Read(r)
	g.clearLocal(w, r, credential)
}

// LastKnownUser returns the cached account for credential, if any.
func (g *Gate) LastKnownUser(ctx context.Context, credential string) (storage.CachedUser, bool) {
	key := g.key(credential)
	if key == "" {
		return storage.CachedUser{}, false
	}
	user, found, err := g.cache.GetUser(ctx, key)
	if err != nil {
		log.Printf("user cache read failed err=%v", err)
		return storage.CachedUser{}, false
	}
	return user, found
}

// Remember writes user to the advisory cache for credential.
func (g *Gate) Remember(ctx context.Context, credential string, user User) {
	key := g.key(credential)
	if key == "" || strings.TrimSpace(user.Email) == "" {
		return
	}
	now := g.now().UTC()
	entry := storage.CachedUser{
		Email:       strings.TrimSpace(user.Email),
		DisplayName: user.DisplayName(),
		SeenAt:      now,
	}
	if g.cacheTTL > 0 {
		entry.ExpiresAt = now.Add(g.cacheTTL)
	}
	if err := g.cache.PutUser(ctx, key, entry); err != nil {
		log.Printf("user cache write failed err=%v", err)
	}
}

func (g *Gate) clearLocal(w http.ResponseWriter, r *http.Request, credential string) {
	sessioncookie.Clear(w, r, g.policy)
	key := g.key(credential)
	if key == "" {
		return
	}
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	if err := g.cache.DeleteUser(ctx, key); err != nil {
		log.Printf("user cache delete failed err=%v", err)
	}
}

// key derives the cache key so raw credentials never reach storage.
func (g *Gate) key(credential string) string {
	credential = strings.TrimSpace(credential)
	if g == nil || g.cache == nil || credential == "" {
		return ""
	}
	mac := hmac.New(sha256.New, g.cacheKey)
	_, _ = mac.Write([]byte(credential))
	return hex.EncodeToString(mac.Sum(nil))
}
