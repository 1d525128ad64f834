package device

import "unicode/utf8"

// Field limits.
const (
	MaxVendorLength = 100
)

// Validate checks a create request and fills in the default status.
func (r *CreateRequest) Validate() error {
	if r.UID <= 0 {
		return invalid("uid must be a positive integer")
	}
	if err := validateVendor(r.Vendor); err != nil {
		return err
	}
	if r.Status == "" {
		r.Status = DefaultStatus
	}
	if !r.Status.Valid() {
		return invalid("status must be one of online, offline, maintenance")
	}
	if r.DeviceTypeID <= 0 {
		return invalid("deviceTypeId must be a positive integer")
	}
	return nil
}

// Validate checks the fields present in an update request.
func (r *UpdateRequest) Validate() error {
	if r.UID != nil && *r.UID <= 0 {
		return invalid("uid must be a positive integer")
	}
	if r.Vendor != nil {
		if err := validateVendor(*r.Vendor); err != nil {
			return err
		}
	}
	if r.Status != nil && !r.Status.Valid() {
		return invalid("status must be one of online, offline, maintenance")
	}
	if r.DeviceTypeID != nil && *r.DeviceTypeID <= 0 {
		return invalid("deviceTypeId must be a positive integer")
	}
	return nil
}

func validateVendor(vendor string) error {
	n := utf8.RuneCountInString(vendor)
	if n == 0 {
		return invalid("vendor is required")
	}
	if n > MaxVendorLength {
		return invalid("vendor must be at most 100 characters")
	}
	return nil
}
