// Package device manages peripheral devices: endpoint devices identified by
// a globally unique numeric uid and optionally attached to a gateway.
//
// A device whose GatewayID is nil is orphaned. Devices created through the
// /devices endpoints start orphaned; the gateway package attaches and
// detaches them. Deleting a gateway orphans its devices, it never deletes
// them.
//
// # Key Types
//
//   - Device: a peripheral device record, read with its DeviceType expanded
//   - DeviceType: an entry of the seeded, read-only type catalog
//   - Repository: persistence contract, implemented for SQLite and PostgreSQL
//   - Service: the business rules (uid uniqueness, existence checks)
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db.DB)
//	svc := device.NewService(repo)
//
//	d, err := svc.Create(ctx, device.CreateRequest{UID: 1001, Vendor: "Acme", DeviceTypeID: 1})
//	if errors.Is(err, device.ErrUIDExists) {
//	    // another device already owns uid 1001
//	}
package device
