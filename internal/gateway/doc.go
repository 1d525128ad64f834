// Package gateway manages network gateways and the peripheral devices
// attached to them.
//
// A gateway holds at most Config.MaxDevicesPerGateway devices. Its serial
// number is unique and immutable; its IPv4 address is unique among
// gateways. Every mutation appends an entry to the gateway's audit trail:
//
//	CREATED          serialNumber, name, ipv4Address, status
//	UPDATED          the submitted fields
//	DEVICE_ATTACHED  deviceId, deviceUid, vendor
//	DEVICE_DETACHED  deviceId, deviceUid
//	DELETED          deletedAt
//
// Deleting a gateway orphans its devices and removes its earlier audit
// entries; the DELETED entry is written afterwards and remains.
//
// Audit entries are written after the mutation they describe and are not
// atomic with it: if the audit write fails the mutation stays committed
// and the error is returned to the caller.
package gateway
