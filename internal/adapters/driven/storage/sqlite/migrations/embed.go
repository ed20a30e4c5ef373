// Package migrations embeds the versioned SQL migrations for the task database.
package migrations

import "embed"

// FS holds NNN_name.up.sql / NNN_name.down.sql pairs.
//
//go:embed *.sql
var FS embed.FS
