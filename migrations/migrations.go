// Package migrations embeds the review schema migrations.
package migrations

import "embed"

// FS holds the *.sql migration files applied by database.RunMigrations.
//
//go:embed *.sql
var FS embed.FS
