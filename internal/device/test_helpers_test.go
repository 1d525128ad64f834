package device

import (
	"context"
	"testing"

	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/database"
	_ "github.com/nerrad567/gateway-fleet-core/migrations"
)

// setupTestDB opens a migrated in-memory database.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

// insertGateway adds a bare gateway row for attach tests.
func insertGateway(t *testing.T, db *database.DB, id string) {
	t.Helper()

	_, err := db.ExecContext(context.Background(),
		`INSERT INTO gateways (id, serial_number, name, ipv4_address, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'active', '2026-03-01T00:00:00Z', '2026-03-01T00:00:00Z')`,
		id, "SN-"+id, "Gateway "+id, "10.0.0."+id[len(id)-1:],
	)
	if err != nil {
		t.Fatalf("inserting gateway %s: %v", id, err)
	}
}

func newTestService(t *testing.T) (*Service, *SQLiteRepository) {
	t.Helper()
	repo := NewSQLiteRepository(setupTestDB(t).DB)
	return NewService(repo), repo
}

func ptr[T any](v T) *T {
	return &v
}
