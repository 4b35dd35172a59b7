// Package migrations holds the reference schema the dashboard queries run
// against. The files are embedded so the server binary can apply them.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
