// Package migrations embeds the schema of the donations database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
