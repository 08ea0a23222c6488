// Package migrations embeds the goose SQL migrations so cmd/migrate runs
// without the source tree.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
