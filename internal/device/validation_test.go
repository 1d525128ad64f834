package device

import (
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/gateway-fleet-core/internal/apperr"
)

func TestCreateRequest_Validate(t *testing.T) {
	valid := func() CreateRequest {
		return CreateRequest{UID: 1, Vendor: "Acme", DeviceTypeID: 1}
	}

	tests := []struct {
		name    string
		mutate  func(r *CreateRequest)
		wantErr bool
	}{
		{"valid", func(*CreateRequest) {}, false},
		{"zero uid", func(r *CreateRequest) { r.UID = 0 }, true},
		{"negative uid", func(r *CreateRequest) { r.UID = -5 }, true},
		{"empty vendor", func(r *CreateRequest) { r.Vendor = "" }, true},
		{"vendor at limit", func(r *CreateRequest) { r.Vendor = strings.Repeat("v", MaxVendorLength) }, false},
		{"vendor too long", func(r *CreateRequest) { r.Vendor = strings.Repeat("v", MaxVendorLength+1) }, true},
		{"unknown status", func(r *CreateRequest) { r.Status = "broken" }, true},
		{"explicit status", func(r *CreateRequest) { r.Status = StatusMaintenance }, false},
		{"missing device type", func(r *CreateRequest) { r.DeviceTypeID = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)

			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidDevice) {
					t.Errorf("error %v should wrap ErrInvalidDevice", err)
				}
				if apperr.KindOf(err) != apperr.BadRequest {
					t.Errorf("KindOf() = %q, want bad_request", apperr.KindOf(err))
				}
			}
		})
	}
}

func TestCreateRequest_ValidateDefaultsStatus(t *testing.T) {
	req := CreateRequest{UID: 1, Vendor: "Acme", DeviceTypeID: 1}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if req.Status != StatusOffline {
		t.Errorf("Status = %q, want offline", req.Status)
	}
}

func TestUpdateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     UpdateRequest
		wantErr bool
	}{
		{"empty", UpdateRequest{}, false},
		{"uid only", UpdateRequest{UID: ptr(int64(9))}, false},
		{"zero uid", UpdateRequest{UID: ptr(int64(0))}, true},
		{"empty vendor", UpdateRequest{Vendor: ptr("")}, true},
		{"bad status", UpdateRequest{Status: ptr(Status("ONLINE"))}, true},
		{"bad type", UpdateRequest{DeviceTypeID: ptr(int64(-1))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if !(UpdateRequest{}).Empty() {
		t.Error("zero UpdateRequest should be Empty")
	}
}
