package migrations

import "embed"

// FS contains embedded SQLite migrations for vault state storage.
//
//go:embed *.sql
var FS embed.FS
