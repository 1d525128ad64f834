package gateway

import (
	"context"
	"testing"

	"github.com/nerrad567/gateway-fleet-core/internal/audit"
	"github.com/nerrad567/gateway-fleet-core/internal/device"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/database"
	_ "github.com/nerrad567/gateway-fleet-core/migrations"
)

// fixture wires the service to a migrated in-memory database.
type fixture struct {
	db       *database.DB
	svc      *Service
	gateways *SQLiteRepository
	devices  *device.SQLiteRepository
	logs     *audit.SQLiteRepository
}

func newFixture(t *testing.T, maxDevices int) *fixture {
	t.Helper()

	db, err := database.Open(database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	f := &fixture{
		db:       db,
		gateways: NewSQLiteRepository(db.DB),
		devices:  device.NewSQLiteRepository(db.DB),
		logs:     audit.NewSQLiteRepository(db.DB),
	}
	f.svc = NewService(f.gateways, f.devices, audit.NewRecorder(f.logs), Config{MaxDevicesPerGateway: maxDevices})
	return f
}

// createGateway creates a gateway or fails the test.
func (f *fixture) createGateway(t *testing.T, serial, ip string) *Gateway {
	t.Helper()

	g, err := f.svc.Create(context.Background(), CreateRequest{
		SerialNumber: serial,
		Name:         "Gateway " + serial,
		IPv4Address:  ip,
	})
	if err != nil {
		t.Fatalf("Create(%s) error = %v", serial, err)
	}
	return g
}

func (f *fixture) logCount(t *testing.T, gatewayID string, action audit.Action) int {
	t.Helper()

	var n int
	err := f.db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM gateway_logs WHERE gateway_id = ? AND action = ?",
		gatewayID, string(action),
	).Scan(&n)
	if err != nil {
		t.Fatalf("counting logs: %v", err)
	}
	return n
}

func ptr[T any](v T) *T {
	return &v
}
