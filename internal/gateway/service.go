package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gateway-fleet-core/internal/audit"
	"github.com/nerrad567/gateway-fleet-core/internal/device"
	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
)

// Recorder appends entries to a gateway's audit trail.
type Recorder interface {
	Record(ctx context.Context, gatewayID string, action audit.Action, details audit.Details) error
}

// Service enforces the gateway business rules: serial number and IP
// uniqueness, the per-gateway device cap, and attach/detach ownership.
//
// The device cap is checked before each attach but is not enforced by the
// store, so concurrent attaches to one gateway can exceed it.
type Service struct {
	gateways Repository
	devices  device.Repository
	recorder Recorder
	cfg      Config
	now      func() time.Time
}

// NewService creates a gateway service. A non-positive
// cfg.MaxDevicesPerGateway falls back to DefaultMaxDevicesPerGateway.
func NewService(gateways Repository, devices device.Repository, recorder Recorder, cfg Config) *Service {
	if cfg.MaxDevicesPerGateway <= 0 {
		cfg.MaxDevicesPerGateway = DefaultMaxDevicesPerGateway
	}
	return &Service{
		gateways: gateways,
		devices:  devices,
		recorder: recorder,
		cfg:      cfg,
		now:      time.Now,
	}
}

// List returns one page of gateways, or every gateway when p is nil, each
// with its attached devices.
func (s *Service) List(ctx context.Context, p *pagination.Params) (*ListResult, error) {
	var q *pagination.Query
	if p != nil {
		query := p.Query()
		q = &query
	}

	res, err := s.gateways.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := s.expandDevices(ctx, res.Items); err != nil {
		return nil, err
	}
	return res, nil
}

// Get returns a gateway with its attached devices.
func (s *Service) Get(ctx context.Context, id string) (*Gateway, error) {
	g, err := s.gateways.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	one := []Gateway{*g}
	if err := s.expandDevices(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// Create registers a gateway and records CREATED.
//
// The serial number is checked before the IP address, so a request that
// collides on both reports ErrSerialNumberExists.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Gateway, error) {
	if req.Status == "" {
		req.Status = DefaultStatus
	}

	if err := s.ensureSerialFree(ctx, req.SerialNumber); err != nil {
		return nil, err
	}
	if err := s.ensureIPFree(ctx, req.IPv4Address, ""); err != nil {
		return nil, err
	}

	g := &Gateway{
		SerialNumber: req.SerialNumber,
		Name:         req.Name,
		IPv4Address:  req.IPv4Address,
		Status:       req.Status,
		Location:     req.Location,
		Devices:      []device.Device{},
	}
	if err := s.gateways.Create(ctx, g); err != nil {
		return nil, err
	}

	if err := s.record(ctx, g.ID, audit.ActionCreated, audit.Details{
		"serialNumber": req.SerialNumber,
		"name":         req.Name,
		"ipv4Address":  req.IPv4Address,
		"status":       string(req.Status),
	}); err != nil {
		return nil, err
	}
	return g, nil
}

// Update applies a partial update, refreshes updatedAt and records UPDATED
// with the submitted fields.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Gateway, error) {
	if _, err := s.gateways.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if req.IPv4Address != nil {
		if err := s.ensureIPFree(ctx, *req.IPv4Address, id); err != nil {
			return nil, err
		}
	}

	if _, err := s.gateways.Update(ctx, id, req, s.now().UTC()); err != nil {
		if errors.Is(err, ErrGatewayNotFound) {
			return nil, ErrRepositoryInconsistent
		}
		return nil, err
	}

	if err := s.record(ctx, id, audit.ActionUpdated, updateDetails(req)); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a gateway. Its devices are orphaned, not deleted. The
// DELETED entry is written after the row is gone and survives it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.gateways.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.gateways.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrGatewayNotFound) {
			return ErrRepositoryInconsistent
		}
		return err
	}

	return s.record(ctx, id, audit.ActionDeleted, audit.Details{
		"deletedAt": s.now().UTC().Format(time.RFC3339),
	})
}

// AttachDevice creates a device attached to the gateway and records
// DEVICE_ATTACHED.
//
// Checks run in a fixed order: gateway existence, then the device cap,
// then uid uniqueness. A full gateway reports ErrDeviceLimitReached even
// when the uid is also taken.
func (s *Service) AttachDevice(ctx context.Context, gatewayID string, req device.CreateRequest) (*device.Device, error) {
	if _, err := s.gateways.GetByID(ctx, gatewayID); err != nil {
		return nil, err
	}

	count, err := s.devices.CountByGateway(ctx, gatewayID)
	if err != nil {
		return nil, err
	}
	if count >= s.cfg.MaxDevicesPerGateway {
		return nil, ErrDeviceLimitReached
	}

	if _, err := s.devices.GetByUID(ctx, req.UID); err == nil {
		return nil, device.ErrUIDExists
	} else if !errors.Is(err, device.ErrDeviceNotFound) {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = device.DefaultStatus
	}
	d := &device.Device{
		UID:          req.UID,
		Vendor:       req.Vendor,
		Status:       status,
		DeviceTypeID: req.DeviceTypeID,
		GatewayID:    &gatewayID,
		LastSeenAt:   req.LastSeenAt,
	}
	if err := s.devices.Create(ctx, d); err != nil {
		return nil, err
	}

	if err := s.record(ctx, gatewayID, audit.ActionDeviceAttached, audit.Details{
		"deviceId":  d.ID,
		"deviceUid": d.UID,
		"vendor":    d.Vendor,
	}); err != nil {
		return nil, err
	}
	return s.devices.GetByID(ctx, d.ID)
}

// DetachDevice orphans a device attached to the gateway and records
// DEVICE_DETACHED.
func (s *Service) DetachDevice(ctx context.Context, gatewayID, deviceID string) error {
	if _, err := s.gateways.GetByID(ctx, gatewayID); err != nil {
		return err
	}

	d, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if !d.AttachedTo(gatewayID) {
		return ErrDeviceNotAttached
	}

	if err := s.devices.SetGateway(ctx, deviceID, nil); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return ErrRepositoryInconsistent
		}
		return err
	}

	return s.record(ctx, gatewayID, audit.ActionDeviceDetached, audit.Details{
		"deviceId":  d.ID,
		"deviceUid": d.UID,
	})
}

func (s *Service) ensureSerialFree(ctx context.Context, serial string) error {
	_, err := s.gateways.GetBySerialNumber(ctx, serial)
	switch {
	case err == nil:
		return ErrSerialNumberExists
	case errors.Is(err, ErrGatewayNotFound):
		return nil
	}
	return err
}

// ensureIPFree returns ErrIPAddressExists if a gateway other than exceptID
// uses ip.
func (s *Service) ensureIPFree(ctx context.Context, ip, exceptID string) error {
	g, err := s.gateways.GetByIPv4Address(ctx, ip)
	switch {
	case errors.Is(err, ErrGatewayNotFound):
		return nil
	case err != nil:
		return err
	case g.ID != exceptID:
		return ErrIPAddressExists
	}
	return nil
}

func (s *Service) expandDevices(ctx context.Context, gateways []Gateway) error {
	ids := make([]string, len(gateways))
	for i := range gateways {
		ids[i] = gateways[i].ID
	}

	attached, err := s.devices.ListByGateways(ctx, ids)
	if err != nil {
		return err
	}
	for i := range gateways {
		devices := attached[gateways[i].ID]
		if devices == nil {
			devices = []device.Device{}
		}
		gateways[i].Devices = devices
	}
	return nil
}

// record writes an audit entry for a mutation that has already committed.
func (s *Service) record(ctx context.Context, gatewayID string, action audit.Action, details audit.Details) error {
	if err := s.recorder.Record(ctx, gatewayID, action, details); err != nil {
		return fmt.Errorf("gateway %s changed but audit entry was not stored: %w", gatewayID, err)
	}
	return nil
}

// updateDetails keeps only the fields present in req.
func updateDetails(req UpdateRequest) audit.Details {
	d := audit.Details{}
	if req.Name != nil {
		d["name"] = *req.Name
	}
	if req.IPv4Address != nil {
		d["ipv4Address"] = *req.IPv4Address
	}
	if req.Status != nil {
		d["status"] = string(*req.Status)
	}
	switch {
	case req.ClearLocation:
		d["location"] = nil
	case req.Location != nil:
		d["location"] = *req.Location
	}
	return d
}
