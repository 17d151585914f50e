package receptionistagent

import "embed"

// MigrationsFS holds the Postgres schema migrations for the key-value
// substrate. Consumed by cmd/server when STORE_BACKEND=postgres.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
