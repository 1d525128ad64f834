package gateway

import (
	"time"

	"github.com/nerrad567/gateway-fleet-core/internal/device"
)

// Status is the administrative state of a gateway.
type Status string

// Gateway statuses.
const (
	StatusActive         Status = "active"
	StatusInactive       Status = "inactive"
	StatusDecommissioned Status = "decommissioned"
)

// DefaultStatus is assigned when a create request leaves Status empty.
const DefaultStatus = StatusActive

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDecommissioned:
		return true
	}
	return false
}

// Gateway is a managed network gateway.
type Gateway struct {
	ID           string    `json:"id"`
	SerialNumber string    `json:"serialNumber"`
	Name         string    `json:"name"`
	IPv4Address  string    `json:"ipv4Address"`
	Status       Status    `json:"status"`
	Location     *string   `json:"location"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Devices lists the attached devices with their types expanded.
	Devices []device.Device `json:"devices"`
}

// CreateRequest holds the fields of a new gateway.
type CreateRequest struct {
	SerialNumber string
	Name         string
	IPv4Address  string
	Status       Status
	Location     *string
}

// UpdateRequest is a partial update. Nil fields are left unchanged.
// The serial number is immutable and cannot be updated.
type UpdateRequest struct {
	Name        *string
	IPv4Address *string
	Status      *Status
	Location    *string

	// ClearLocation removes the location. It excludes Location.
	ClearLocation bool
}

// ListResult is one page of gateways plus the total gateway count.
type ListResult struct {
	Items []Gateway
	Total int
}

// Config holds the service limits, loaded once at startup.
type Config struct {
	// MaxDevicesPerGateway caps how many devices one gateway may hold.
	MaxDevicesPerGateway int
}

// DefaultMaxDevicesPerGateway is used when Config leaves the cap unset.
const DefaultMaxDevicesPerGateway = 10
