// Package migrations embeds the goose SQL migrations of the local client DB.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
