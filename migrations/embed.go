// Package migrations embeds the SQL schema for both supported stores.
//
// sqlite/ holds YYYYMMDD_HHMMSS_name files for the built-in runner in the
// database package; postgres/ holds NNNNNN_name files for golang-migrate.
// Importing this package registers both.
package migrations

import (
	"embed"
	"io/fs"

	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/database"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/postgres"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

func init() {
	sqliteFS, err := fs.Sub(migrationsFS, "sqlite")
	if err != nil {
		panic(err)
	}
	postgresFS, err := fs.Sub(migrationsFS, "postgres")
	if err != nil {
		panic(err)
	}

	database.MigrationsFS = sqliteFS
	database.MigrationsDir = "."
	postgres.MigrationsFS = postgresFS
	postgres.MigrationsDir = "."
}
