// Package migrations embeds the goose SQL migrations for Postgres.
package migrations

import "embed"

// FS contains the schema migrations, applied with goose.
//
//go:embed *.sql
var FS embed.FS
