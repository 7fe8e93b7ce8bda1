// Package migrations embeds the goose SQL migrations applied at
// startup by the repository manager.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
