// Package migrations embeds the goose SQL migrations for the canvas database.
package migrations

import "embed"

// Migrations holds every *.sql migration file.
//
//go:embed *.sql
var Migrations embed.FS
