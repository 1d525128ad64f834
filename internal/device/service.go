package device

import (
	"context"
	"errors"

	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
)

// Service enforces the device business rules on top of a Repository.
// It is safe for concurrent use; uid uniqueness is ultimately guaranteed by
// the store's UNIQUE constraint.
type Service struct {
	repo Repository
}

// NewService creates a device service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of devices, or every device when p is nil.
func (s *Service) List(ctx context.Context, p *pagination.Params) (*ListResult, error) {
	if p == nil {
		return s.repo.List(ctx, nil)
	}
	q := p.Query()
	return s.repo.List(ctx, &q)
}

// Get returns a device by ID.
func (s *Service) Get(ctx context.Context, id string) (*Device, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a device exactly as requested. GatewayID is kept as given,
// normally nil.
//
// Returns ErrGatewayNotFound if GatewayID names no gateway and ErrUIDExists
// if any device already owns the uid.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Device, error) {
	if req.Status == "" {
		req.Status = DefaultStatus
	}
	if req.GatewayID != nil {
		exists, err := s.repo.GatewayExists(ctx, *req.GatewayID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrGatewayNotFound
		}
	}
	if err := s.ensureUIDFree(ctx, req.UID, ""); err != nil {
		return nil, err
	}

	d := &Device{
		UID:          req.UID,
		Vendor:       req.Vendor,
		Status:       req.Status,
		DeviceTypeID: req.DeviceTypeID,
		GatewayID:    req.GatewayID,
		LastSeenAt:   req.LastSeenAt,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, d.ID)
}

// Update applies a partial update.
//
// A new uid must not belong to another device; keeping the device's own
// uid never conflicts. An empty request returns the device unchanged.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Device, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Empty() {
		return current, nil
	}
	if req.UID != nil {
		if err := s.ensureUIDFree(ctx, *req.UID, id); err != nil {
			return nil, err
		}
	}

	d, err := s.repo.Update(ctx, id, req)
	if errors.Is(err, ErrDeviceNotFound) {
		return nil, ErrRepositoryInconsistent
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes a device. Its audit history and siblings are untouched.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrDeviceNotFound) {
		return ErrRepositoryInconsistent
	}
	return err
}

// ListTypes returns the device-type catalog.
func (s *Service) ListTypes(ctx context.Context) ([]DeviceType, error) {
	return s.repo.ListTypes(ctx)
}

// ensureUIDFree returns ErrUIDExists if a device other than exceptID owns
// uid. exceptID is empty when creating.
func (s *Service) ensureUIDFree(ctx context.Context, uid int64, exceptID string) error {
	existing, err := s.repo.GetByUID(ctx, uid)
	switch {
	case errors.Is(err, ErrDeviceNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != exceptID:
		return ErrUIDExists
	}
	return nil
}
