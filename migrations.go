// Package usersvc holds assets shared by the service binaries.
package usersvc

import "embed"

// Migrations contains the goose SQL migrations under the "migrations" directory.
//
//go:embed migrations/*.sql
var Migrations embed.FS
