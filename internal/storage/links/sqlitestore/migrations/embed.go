package migrations

import "embed"

// FS contains embedded SQLite migrations for link storage.
//
//go:embed *.sql
var FS embed.FS
