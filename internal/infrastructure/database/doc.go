// Package database provides the SQLite store used by the gateway fleet
// repositories when database.driver is "sqlite".
//
// It manages:
//   - The connection, with foreign keys on and optional WAL journaling
//   - The embedded schema migrations (see the migrations package)
//   - Health checks for the /health endpoint
//
// A Path of ":memory:" opens a private in-memory database. Tests use it:
//
//	db, err := database.Open(database.Config{Path: database.MemoryPath})
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    t.Fatal(err)
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql. Each one runs in its own transaction.
package database
