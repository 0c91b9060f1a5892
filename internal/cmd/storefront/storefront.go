// Package storefront parses storefront flags and launches the web service.
package storefront

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	entrypoint "github.com/anvistudio/storefront/internal/platform/cmd"
	"github.com/anvistudio/storefront/internal/platform/keyderive"
	"github.com/anvistudio/storefront/internal/platform/timeouts"
	server "github.com/anvistudio/storefront/internal/services/storefront"
	"github.com/anvistudio/storefront/internal/services/storefront/integration/commerceapi"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flowhandoff"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
	"github.com/anvistudio/storefront/internal/services/storefront/session"
	"github.com/anvistudio/storefront/internal/services/storefront/storage"
	"github.com/anvistudio/storefront/internal/services/storefront/storage/redis"
	"github.com/anvistudio/storefront/internal/services/storefront/storage/sqlite"
)

const purgeInterval = time.Hour

// Config holds storefront command configuration.
type Config struct {
	HTTPAddr            string        `env:"STOREFRONT_HTTP_ADDR" envDefault:"localhost:8090"`
	APIBaseURL          string        `env:"STOREFRONT_API_BASE_URL" envDefault:"http://localhost:8080/api"`
	APISessionCookie    string        `env:"STOREFRONT_API_SESSION_COOKIE" envDefault:"JSESSIONID"`
	APITimeout          time.Duration `env:"STOREFRONT_API_TIMEOUT" envDefault:"10s"`
	Secret              string        `env:"STOREFRONT_SECRET"`
	FlowTTL             time.Duration `env:"STOREFRONT_FLOW_TTL" envDefault:"15m"`
	UserCachePath       string        `env:"STOREFRONT_USER_CACHE_PATH"`
	UserCacheRedisURL   string        `env:"STOREFRONT_USER_CACHE_REDIS_URL"`
	UserCacheTTL        time.Duration `env:"STOREFRONT_USER_CACHE_TTL" envDefault:"720h"`
	TrustForwardedProto bool          `env:"STOREFRONT_TRUST_FORWARDED_PROTO"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "Commerce API base URL")
	fs.DurationVar(&cfg.APITimeout, "api-timeout", cfg.APITimeout, "Commerce API request timeout")
	fs.StringVar(&cfg.UserCachePath, "user-cache-path", cfg.UserCachePath, "SQLite path for the last-known-user cache")
	fs.StringVar(&cfg.UserCacheRedisURL, "user-cache-redis-url", cfg.UserCacheRedisURL, "Redis URL for the last-known-user cache")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "Trust X-Forwarded-Proto from the fronting proxy")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the storefront web service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceStorefront, func(ctx context.Context) error {
		srv, err := build(ctx, cfg)
		if err != nil {
			return fmt.Errorf("init storefront server: %w", err)
		}
		defer srv.Close()

		if err := srv.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve storefront: %w", err)
		}
		return nil
	})
}

func build(ctx context.Context, cfg Config) (*server.Server, error) {
	policy := requestmeta.SchemePolicy{TrustForwardedProto: cfg.TrustForwardedProto}

	keyring, err := openKeyring(cfg.Secret)
	if err != nil {
		return nil, err
	}
	flowKey, err := keyring.Derive(keyderive.PurposeFlowToken)
	if err != nil {
		return nil, err
	}
	cacheKey, err := keyring.Derive(keyderive.PurposeCacheKey)
	if err != nil {
		return nil, err
	}

	api, err := commerceapi.New(commerceapi.Config{
		BaseURL:       cfg.APIBaseURL,
		SessionCookie: cfg.APISessionCookie,
		Timeout:       cfg.APITimeout,
	})
	if err != nil {
		return nil, err
	}
	handoff, err := flowhandoff.NewCodec(flowKey, cfg.FlowTTL, policy)
	if err != nil {
		return nil, err
	}

	cache, err := openUserCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var closers []io.Closer
	if cache != nil {
		closers = append(closers, cache)
	}

	gate := session.NewGate(session.Config{
		Backend:  api,
		Cache:    cache,
		CacheKey: cacheKey,
		CacheTTL: cfg.UserCacheTTL,
		Policy:   policy,
	})

	srv, err := server.NewServer(server.Config{
		HTTPAddr:            cfg.HTTPAddr,
		API:                 api,
		Gate:                gate,
		Handoff:             handoff,
		RequestSchemePolicy: policy,
		Logger:              log.Default(),
		Closers:             closers,
	})
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	return srv, nil
}

func openKeyring(secret string) (keyderive.Keyring, error) {
	if strings.TrimSpace(secret) == "" {
		log.Printf("STOREFRONT_SECRET is unset; flow handoffs will not survive a restart")
		return keyderive.Ephemeral()
	}
	keyring, err := keyderive.New(secret)
	if err != nil {
		return keyderive.Keyring{}, fmt.Errorf("storefront secret: %w", err)
	}
	return keyring, nil
}

// openUserCache picks the last-known-user cache backend. Redis wins when
// both are configured; neither disables the cache.
func openUserCache(ctx context.Context, cfg Config) (storage.UserCache, error) {
	if url := strings.TrimSpace(cfg.UserCacheRedisURL); url != "" {
		store, err := redis.Open(ctx, url, timeouts.CacheStartup)
		if err != nil {
			return nil, fmt.Errorf("open redis user cache: %w", err)
		}
		return store, nil
	}
	if path := strings.TrimSpace(cfg.UserCachePath); path != "" {
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite user cache: %w", err)
		}
		go purgeLoop(ctx, store, purgeInterval)
		return store, nil
	}
	return nil, nil
}

type expiryPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

func purgeLoop(ctx context.Context, store expiryPurger, every time.Duration) {
	purge := func() {
		removed, err := store.PurgeExpired(ctx, time.Now())
		switch {
		case err != nil && ctx.Err() == nil:
			log.Printf("user cache purge err=%v", err)
		case removed > 0:
			log.Printf("user cache purge removed=%d", removed)
		}
	}
	purge()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}

func closeAll(closers []io.Closer) {
	for _, closer := range closers {
		if err := closer.Close(); err != nil {
			log.Printf("close storefront resource: %v", err)
		}
	}
}
