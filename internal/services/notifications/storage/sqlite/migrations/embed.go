package migrations

import "embed"

// FS contains embedded SQLite migrations for notification inbox storage.
//
//go:embed *.sql
var FS embed.FS
