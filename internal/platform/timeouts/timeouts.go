// Package timeouts defines shared timeout constants used across the storefront.
package timeouts

import "time"

// APIRequest caps a single call from the storefront to the commerce API when
// no explicit timeout is configured.
const APIRequest = 10 * time.Second

// SessionCheck caps the session probe made on every page render so a slow
// commerce API degrades to an anonymous page instead of a hung one.
const SessionCheck = 3 * time.Second

// CacheStartup bounds how long startup waits for the advisory user cache.
const CacheStartup = 10 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
