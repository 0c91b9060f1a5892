package migrations

import "embed"

// FS contains embedded SQLite migrations for the user cache.
//
//go:embed *.sql
var FS embed.FS
