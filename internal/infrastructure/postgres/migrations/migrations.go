// Package migrations embeds the credit-service schema migrations.
package migrations

import "embed"

// FS holds the golang-migrate files at its root.
//
//go:embed *.sql
var FS embed.FS
