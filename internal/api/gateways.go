package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gateway-fleet-core/internal/apperr"
	"github.com/nerrad567/gateway-fleet-core/internal/device"
	"github.com/nerrad567/gateway-fleet-core/internal/gateway"
	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
)

// createGatewayBody is the JSON body of POST /gateways.
type createGatewayBody struct {
	SerialNumber string         `json:"serialNumber"`
	Name         string         `json:"name"`
	IPv4Address  string         `json:"ipv4Address"`
	Status       gateway.Status `json:"status"`
	Location     *string        `json:"location"`
}

// updateGatewayBody is the JSON body of PUT/PATCH /gateways/{id}.
// SerialNumber is decoded only so that an attempt to change it is rejected.
type updateGatewayBody struct {
	SerialNumber *string          `json:"serialNumber"`
	Name         *string          `json:"name"`
	IPv4Address  *string          `json:"ipv4Address"`
	Status       *gateway.Status  `json:"status"`
	Location     optional[string] `json:"location"`
}

// attachDeviceBody is the JSON body of POST /gateways/{id}/devices.
type attachDeviceBody struct {
	UID          int64         `json:"uid"`
	Vendor       string        `json:"vendor"`
	Status       device.Status `json:"status"`
	DeviceTypeID int64         `json:"deviceTypeId"`
	LastSeenAt   *time.Time    `json:"lastSeenAt"`
}

// detachDeviceBody is the JSON body of DELETE /gateways/{id}/devices.
type detachDeviceBody struct {
	DeviceID string `json:"deviceId"`
}

// handleListGateways returns gateways with their devices.
//
// Query parameters:
//   - page: 1-based page number
//   - limit: page size, at most 100
//
// Without either parameter the whole collection is returned.
func (s *Server) handleListGateways(w http.ResponseWriter, r *http.Request) {
	params := parsePagination(r)

	res, err := s.gateways.List(r.Context(), params)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageOf(res.Items, res.Total, params))
}

// handleGetGateway returns a single gateway by ID.
func (s *Server) handleGetGateway(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "gateway ID")
	if !ok {
		return
	}

	g, err := s.gateways.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleCreateGateway registers a new gateway.
func (s *Server) handleCreateGateway(w http.ResponseWriter, r *http.Request) {
	var body createGatewayBody
	if !decodeJSON(w, r, &body) {
		return
	}

	req := gateway.CreateRequest{
		SerialNumber: body.SerialNumber,
		Name:         body.Name,
		IPv4Address:  body.IPv4Address,
		Status:       body.Status,
		Location:     body.Location,
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, apperr.MessageOf(err, "invalid gateway"))
		return
	}

	g, err := s.gateways.Create(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// handleUpdateGateway partially updates a gateway. PUT and PATCH behave the same.
func (s *Server) handleUpdateGateway(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "gateway ID")
	if !ok {
		return
	}

	var body updateGatewayBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.SerialNumber != nil {
		writeValidationError(w, "serialNumber cannot be updated")
		return
	}

	req := gateway.UpdateRequest{
		Name:          body.Name,
		IPv4Address:   body.IPv4Address,
		Status:        body.Status,
		Location:      body.Location.Value,
		ClearLocation: body.Location.Set && body.Location.Value == nil,
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, apperr.MessageOf(err, "invalid gateway"))
		return
	}

	g, err := s.gateways.Update(r.Context(), id, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleDeleteGateway deletes a gateway. Its devices become orphaned.
func (s *Server) handleDeleteGateway(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "gateway ID")
	if !ok {
		return
	}

	if err := s.gateways.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAttachDevice creates a device attached to the gateway.
func (s *Server) handleAttachDevice(w http.ResponseWriter, r *http.Request) {
	gatewayID, ok := pathUUID(w, r, "id", "gateway ID")
	if !ok {
		return
	}

	var body attachDeviceBody
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

	d, err := s.gateways.AttachDevice(r.Context(), gatewayID, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// handleDetachDevice orphans a device attached to the gateway. The device ID
// comes from the path when present, otherwise from a {"deviceId"} body.
func (s *Server) handleDetachDevice(w http.ResponseWriter, r *http.Request) {
	gatewayID, ok := pathUUID(w, r, "id", "gateway ID")
	if !ok {
		return
	}

	var rawDeviceID string
	if p := chi.URLParam(r, "deviceId"); p != "" {
		rawDeviceID = p
	} else {
		var body detachDeviceBody
		if !decodeJSON(w, r, &body) {
			return
		}
		rawDeviceID = body.DeviceID
	}

	deviceID, ok := parseUUID(w, "device ID", rawDeviceID)
	if !ok {
		return
	}

	if err := s.gateways.DetachDevice(r.Context(), gatewayID, deviceID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListGatewayLogs returns the gateway's audit trail, newest first.
// The trail stays readable after the gateway is deleted, so the gateway's
// existence is not checked. The trail is always paginated.
func (s *Server) handleListGatewayLogs(w http.ResponseWriter, r *http.Request) {
	gatewayID, ok := pathUUID(w, r, "id", "gateway ID")
	if !ok {
		return
	}

	params := parsePagination(r)
	if params == nil {
		params = &pagination.Params{Page: pagination.DefaultPage, Limit: pagination.DefaultLimit}
	}

	res, err := s.auditLog.ListByGateway(r.Context(), gatewayID, params.Query())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageOf(res.Entries, res.Total, params))
}
