package device

import (
	"time"
)

// Status is the reported operating state of a device.
type Status string

// Device statuses.
const (
	StatusOnline      Status = "online"
	StatusOffline     Status = "offline"
	StatusMaintenance Status = "maintenance"
)

// DefaultStatus is assigned when a create request leaves Status empty.
const DefaultStatus = StatusOffline

// AllStatuses returns every valid device status.
func AllStatuses() []Status {
	return []Status{StatusOnline, StatusOffline, StatusMaintenance}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusMaintenance:
		return true
	}
	return false
}

// DeviceType is an entry in the device-type catalog.
type DeviceType struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Device is a peripheral device.
type Device struct {
	ID           string      `json:"id"`
	UID          int64       `json:"uid"`
	Vendor       string      `json:"vendor"`
	Status       Status      `json:"status"`
	DeviceTypeID int64       `json:"deviceTypeId"`
	DeviceType   *DeviceType `json:"deviceType,omitempty"`

	// GatewayID is nil while the device is orphaned.
	GatewayID *string `json:"gatewayId"`

	CreatedAt  time.Time  `json:"createdAt"`
	LastSeenAt *time.Time `json:"lastSeenAt"`
}

// Orphaned reports whether the device is attached to no gateway.
func (d *Device) Orphaned() bool {
	return d.GatewayID == nil
}

// AttachedTo reports whether the device is attached to gatewayID.
func (d *Device) AttachedTo(gatewayID string) bool {
	return d.GatewayID != nil && *d.GatewayID == gatewayID
}

// CreateRequest holds the fields of a new device.
type CreateRequest struct {
	UID          int64
	Vendor       string
	Status       Status
	DeviceTypeID int64
	GatewayID    *string
	LastSeenAt   *time.Time
}

// UpdateRequest is a partial update. Nil fields are left unchanged.
// The gateway reference is changed only through attach and detach.
type UpdateRequest struct {
	UID          *int64
	Vendor       *string
	Status       *Status
	DeviceTypeID *int64
	LastSeenAt   *time.Time
}

// Empty reports whether the request changes nothing.
func (r UpdateRequest) Empty() bool {
	return r.UID == nil && r.Vendor == nil && r.Status == nil &&
		r.DeviceTypeID == nil && r.LastSeenAt == nil
}

// ListResult is one page of devices plus the total device count.
type ListResult struct {
	Items []Device
	Total int
}
