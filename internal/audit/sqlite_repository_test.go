package audit

import (
	"context"
	"testing"
	"time"

	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/database"
	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
	_ "github.com/nerrad567/gateway-fleet-core/migrations"
)

func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestSQLiteRepository_AppendAndList(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	actions := []Action{ActionCreated, ActionUpdated, ActionDeviceAttached}
	for i, a := range actions {
		e := &Entry{
			GatewayID: "gw-1",
			Action:    a,
			Details:   Details{"step": float64(i)},
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append(%s) error = %v", a, err)
		}
		if e.ID == 0 {
			t.Errorf("Append(%s) did not set ID", a)
		}
	}
	if err := repo.Append(ctx, &Entry{GatewayID: "gw-2", Action: ActionCreated}); err != nil {
		t.Fatalf("Append(other gateway) error = %v", err)
	}

	res, err := repo.ListByGateway(ctx, "gw-1", pagination.ToStoreQuery(1, 10))
	if err != nil {
		t.Fatalf("ListByGateway() error = %v", err)
	}
	if res.Total != 3 || len(res.Entries) != 3 {
		t.Fatalf("Total=%d len=%d, want 3 and 3", res.Total, len(res.Entries))
	}

	newest := res.Entries[0]
	if newest.Action != ActionDeviceAttached {
		t.Errorf("first entry = %s, want newest (DEVICE_ATTACHED)", newest.Action)
	}
	if newest.Details["step"] != float64(2) {
		t.Errorf("Details = %v", newest.Details)
	}
	if !newest.CreatedAt.Equal(base.Add(2 * time.Second)) {
		t.Errorf("CreatedAt = %v", newest.CreatedAt)
	}
}

func TestSQLiteRepository_ListPagination(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.Append(ctx, &Entry{GatewayID: "gw-1", Action: ActionUpdated}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	res, err := repo.ListByGateway(ctx, "gw-1", pagination.ToStoreQuery(2, 2))
	if err != nil {
		t.Fatalf("ListByGateway() error = %v", err)
	}
	if res.Total != 5 {
		t.Errorf("Total = %d, want 5", res.Total)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(res.Entries))
	}
	if res.Entries[0].ID != 3 || res.Entries[1].ID != 2 {
		t.Errorf("page 2 IDs = %d,%d, want 3,2", res.Entries[0].ID, res.Entries[1].ID)
	}
}

func TestSQLiteRepository_EmptyTrail(t *testing.T) {
	repo := setupTestRepo(t)

	res, err := repo.ListByGateway(context.Background(), "missing", pagination.ToStoreQuery(1, 10))
	if err != nil {
		t.Fatalf("ListByGateway() error = %v", err)
	}
	if res.Total != 0 || res.Entries == nil || len(res.Entries) != 0 {
		t.Errorf("ListByGateway(missing) = %+v, want empty non-nil", res)
	}
}

func TestSQLiteRepository_NilDetails(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	if err := repo.Append(ctx, &Entry{GatewayID: "gw-1", Action: ActionDeleted}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	res, err := repo.ListByGateway(ctx, "gw-1", pagination.ToStoreQuery(1, 10))
	if err != nil {
		t.Fatalf("ListByGateway() error = %v", err)
	}
	if res.Entries[0].Details != nil {
		t.Errorf("Details = %v, want nil", res.Entries[0].Details)
	}
}

func TestSQLiteRepository_RejectsUnknownAction(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.Append(context.Background(), &Entry{GatewayID: "gw-1", Action: "RENAMED"})
	if err == nil {
		t.Error("Append() should fail the action CHECK constraint")
	}
}
