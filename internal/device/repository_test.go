package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
)

func TestSQLiteRepository_CreateAndGet(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t).DB)
	ctx := context.Background()
	seen := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	d := &Device{UID: 1001, Vendor: "Acme", Status: StatusOnline, DeviceTypeID: 1, LastSeenAt: &seen}
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if d.ID == "" || d.CreatedAt.IsZero() {
		t.Fatalf("Create() did not assign ID/CreatedAt: %+v", d)
	}

	got, err := repo.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.UID != 1001 || got.Vendor != "Acme" || got.Status != StatusOnline {
		t.Errorf("GetByID() = %+v", got)
	}
	if !got.Orphaned() {
		t.Error("new device should be orphaned")
	}
	if got.DeviceType == nil || got.DeviceType.Name != "sensor" {
		t.Errorf("DeviceType = %+v, want expanded sensor", got.DeviceType)
	}
	if got.LastSeenAt == nil || !got.LastSeenAt.Equal(seen) {
		t.Errorf("LastSeenAt = %v, want %v", got.LastSeenAt, seen)
	}

	byUID, err := repo.GetByUID(ctx, 1001)
	if err != nil {
		t.Fatalf("GetByUID() error = %v", err)
	}
	if byUID.ID != d.ID {
		t.Errorf("GetByUID() ID = %s, want %s", byUID.ID, d.ID)
	}
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t).DB)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("GetByID() error = %v, want ErrDeviceNotFound", err)
	}
	if _, err := repo.GetByUID(ctx, 42); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("GetByUID() error = %v, want ErrDeviceNotFound", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Delete() error = %v, want ErrDeviceNotFound", err)
	}
	if err := repo.SetGateway(ctx, "missing", nil); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("SetGateway() error = %v, want ErrDeviceNotFound", err)
	}
	if _, err := repo.Update(ctx, "missing", UpdateRequest{Vendor: ptr("x")}); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Update() error = %v, want ErrDeviceNotFound", err)
	}
}

func TestSQLiteRepository_ConstraintTranslation(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t).DB)
	ctx := context.Background()

	if err := repo.Create(ctx, &Device{UID: 7, Vendor: "Acme", Status: StatusOffline, DeviceTypeID: 1}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name   string
		device Device
		want   error
	}{
		{"duplicate uid", Device{UID: 7, Vendor: "Other", Status: StatusOffline, DeviceTypeID: 1}, ErrUIDExists},
		{"unknown device type", Device{UID: 8, Vendor: "Other", Status: StatusOffline, DeviceTypeID: 99}, ErrDeviceTypeNotFound},
		{"unknown gateway", Device{UID: 9, Vendor: "Other", Status: StatusOffline, DeviceTypeID: 1, GatewayID: ptr("00000000-0000-0000-0000-00000000dead")}, ErrGatewayNotFound},
		{"unknown gateway and device type", Device{UID: 10, Vendor: "Other", Status: StatusOffline, DeviceTypeID: 99, GatewayID: ptr("00000000-0000-0000-0000-00000000dead")}, ErrGatewayNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.device
			if err := repo.Create(ctx, &d); !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSQLiteRepository_Update(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t).DB)
	ctx := context.Background()

	d := &Device{UID: 1, Vendor: "Acme", Status: StatusOffline, DeviceTypeID: 1}
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.Update(ctx, d.ID, UpdateRequest{
		Vendor:       ptr("Globex"),
		Status:       ptr(StatusMaintenance),
		DeviceTypeID: ptr(int64(3)),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Vendor != "Globex" || got.Status != StatusMaintenance || got.DeviceType.Name != "camera" {
		t.Errorf("Update() = %+v", got)
	}
	if got.UID != 1 {
		t.Errorf("UID changed to %d, want untouched", got.UID)
	}

	// An empty update is a read.
	same, err := repo.Update(ctx, d.ID, UpdateRequest{})
	if err != nil {
		t.Fatalf("Update(empty) error = %v", err)
	}
	if same.Vendor != "Globex" {
		t.Errorf("Update(empty) Vendor = %q", same.Vendor)
	}
}

func TestSQLiteRepository_GatewayMembership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()
	insertGateway(t, db, "gw-1")
	insertGateway(t, db, "gw-2")

	gw1, gw2 := "gw-1", "gw-2"
	for i, gw := range []*string{&gw1, &gw1, &gw2, nil} {
		d := &Device{UID: int64(i + 1), Vendor: "Acme", Status: StatusOffline, DeviceTypeID: 1, GatewayID: gw}
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
	}

	n, err := repo.CountByGateway(ctx, gw1)
	if err != nil {
		t.Fatalf("CountByGateway() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountByGateway(gw-1) = %d, want 2", n)
	}

	grouped, err := repo.ListByGateways(ctx, []string{gw1, gw2, "gw-empty"})
	if err != nil {
		t.Fatalf("ListByGateways() error = %v", err)
	}
	if len(grouped[gw1]) != 2 || len(grouped[gw2]) != 1 || len(grouped["gw-empty"]) != 0 {
		t.Errorf("ListByGateways() sizes = %d,%d,%d", len(grouped[gw1]), len(grouped[gw2]), len(grouped["gw-empty"]))
	}

	// Orphan one device from gw-1.
	first := grouped[gw1][0]
	if err := repo.SetGateway(ctx, first.ID, nil); err != nil {
		t.Fatalf("SetGateway(nil) error = %v", err)
	}
	if n, _ := repo.CountByGateway(ctx, gw1); n != 1 {
		t.Errorf("CountByGateway(gw-1) after detach = %d, want 1", n)
	}
	got, _ := repo.GetByID(ctx, first.ID)
	if !got.Orphaned() {
		t.Error("detached device should be orphaned")
	}
}

func TestSQLiteRepository_GatewayDeletionOrphansDevices(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()
	insertGateway(t, db, "gw-1")

	gw := "gw-1"
	d := &Device{UID: 1, Vendor: "Acme", Status: StatusOnline, DeviceTypeID: 1, GatewayID: &gw}
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM gateways WHERE id = ?", gw); err != nil {
		t.Fatalf("deleting gateway: %v", err)
	}

	got, err := repo.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("device should survive its gateway: %v", err)
	}
	if !got.Orphaned() {
		t.Errorf("GatewayID = %v, want nil", *got.GatewayID)
	}
}

func TestSQLiteRepository_List(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t).DB)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := repo.Create(ctx, &Device{UID: int64(i), Vendor: "Acme", Status: StatusOffline, DeviceTypeID: 2}); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
	}

	all, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("List(nil) error = %v", err)
	}
	if all.Total != 5 || len(all.Items) != 5 {
		t.Errorf("List(nil) total=%d len=%d, want 5 and 5", all.Total, len(all.Items))
	}

	q := pagination.ToStoreQuery(2, 2)
	page, err := repo.List(ctx, &q)
	if err != nil {
		t.Fatalf("List(page 2) error = %v", err)
	}
	if page.Total != 5 || len(page.Items) != 2 {
		t.Errorf("List(page 2) total=%d len=%d, want 5 and 2", page.Total, len(page.Items))
	}
	if page.Items[0].UID != 3 {
		t.Errorf("page 2 starts with uid %d, want 3", page.Items[0].UID)
	}
}

func TestSQLiteRepository_ListTypes(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t).DB)

	types, err := repo.ListTypes(context.Background())
	if err != nil {
		t.Fatalf("ListTypes() error = %v", err)
	}

	want := []string{"sensor", "actuator", "camera", "controller", "meter"}
	if len(types) != len(want) {
		t.Fatalf("len(ListTypes()) = %d, want %d", len(types), len(want))
	}
	for i, name := range want {
		if types[i].Name != name || types[i].ID != int64(i+1) {
			t.Errorf("types[%d] = %d/%s, want %d/%s", i, types[i].ID, types[i].Name, i+1, name)
		}
	}
}
