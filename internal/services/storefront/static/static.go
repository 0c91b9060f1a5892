// Package static embeds the storefront's browser assets.
package static

import "embed"

// FS exposes storefront static assets for HTTP serving.
//
//go:embed *.css *.js
var FS embed.FS
