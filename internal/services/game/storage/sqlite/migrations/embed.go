package migrations

import "embed"

// FS contains embedded SQLite migrations for game objective storage.
//
//go:embed *.sql
var FS embed.FS
