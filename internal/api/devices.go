package api

import (
	"net/http"
	"time"

	"github.com/nerrad567/gateway-fleet-core/internal/apperr"
	"github.com/nerrad567/gateway-fleet-core/internal/device"
)

// createDeviceBody is the JSON body of POST /devices.
type createDeviceBody struct {
	UID          int64         `json:"uid"`
	Vendor       string        `json:"vendor"`
	Status       device.Status `json:"status"`
	DeviceTypeID int64         `json:"deviceTypeId"`
	LastSeenAt   *time.Time    `json:"lastSeenAt"`
}

// updateDeviceBody is the JSON body of PUT/PATCH /devices/{id}.
// GatewayID is decoded only so that an attempt to change it is rejected;
// devices move between gateways through attach and detach.
type updateDeviceBody struct {
	UID          *int64         `json:"uid"`
	Vendor       *string        `json:"vendor"`
	Status       *device.Status `json:"status"`
	DeviceTypeID *int64         `json:"deviceTypeId"`
	LastSeenAt   *time.Time     `json:"lastSeenAt"`
	GatewayID    *string        `json:"gatewayId"`
}

// handleListDevices returns devices with their types expanded.
//
// Query parameters:
//   - page: 1-based page number
//   - limit: page size, at most 100
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	params := parsePagination(r)

	res, err := s.devices.List(r.Context(), params)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageOf(res.Items, res.Total, params))
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "device ID")
	if !ok {
		return
	}

	d, err := s.devices.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleCreateDevice creates an orphaned device.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var body createDeviceBody
	if !decodeJSON(w, r, &body) {
		return
	}

	req := device.CreateRequest{
		UID:          body.UID,
		Vendor:       body.Vendor,
		Status:       body.Status,
		DeviceTypeID: body.DeviceTypeID,
		LastSeenAt:   body.LastSeenAt,
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, apperr.MessageOf(err, "invalid device"))
		return
	}

	d, err := s.devices.Create(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// handleUpdateDevice partially updates a device. PUT and PATCH behave the same.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "device ID")
	if !ok {
		return
	}

	var body updateDeviceBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.GatewayID != nil {
		writeValidationError(w, "gatewayId cannot be updated; use attach or detach")
		return
	}

	req := device.UpdateRequest{
		UID:          body.UID,
		Vendor:       body.Vendor,
		Status:       body.Status,
		DeviceTypeID: body.DeviceTypeID,
		LastSeenAt:   body.LastSeenAt,
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, apperr.MessageOf(err, "invalid device"))
		return
	}

	d, err := s.devices.Update(r.Context(), id, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleDeleteDevice deletes a device.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "device ID")
	if !ok {
		return
	}

	if err := s.devices.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListDeviceTypes returns the device-type catalog.
func (s *Server) handleListDeviceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.devices.ListTypes(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if types == nil {
		types = []device.DeviceType{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"deviceTypes": types, "count": len(types)})
}
