package gateway

import (
	"regexp"
	"unicode/utf8"
)

// Field limits.
const (
	MaxSerialNumberLength = 100
	MaxNameLength         = 255
	MaxLocationLength     = 255
)

// ipv4Pattern matches dotted-quad notation. Octet ranges are not checked.
var ipv4Pattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// ValidIPv4 reports whether s looks like an IPv4 address.
func ValidIPv4(s string) bool {
	return ipv4Pattern.MatchString(s)
}

// Validate checks a create request and fills in the default status.
func (r *CreateRequest) Validate() error {
	if err := checkLength("serialNumber", r.SerialNumber, 1, MaxSerialNumberLength); err != nil {
		return err
	}
	if err := checkLength("name", r.Name, 1, MaxNameLength); err != nil {
		return err
	}
	if !ValidIPv4(r.IPv4Address) {
		return invalid("ipv4Address must be a valid IPv4 address")
	}
	if r.Status == "" {
		r.Status = DefaultStatus
	}
	if !r.Status.Valid() {
		return invalid("status must be one of active, inactive, decommissioned")
	}
	if r.Location != nil {
		if err := checkLength("location", *r.Location, 0, MaxLocationLength); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the fields present in an update request.
func (r *UpdateRequest) Validate() error {
	if r.Name != nil {
		if err := checkLength("name", *r.Name, 1, MaxNameLength); err != nil {
			return err
		}
	}
	if r.IPv4Address != nil && !ValidIPv4(*r.IPv4Address) {
		return invalid("ipv4Address must be a valid IPv4 address")
	}
	if r.Status != nil && !r.Status.Valid() {
		return invalid("status must be one of active, inactive, decommissioned")
	}
	if r.Location != nil {
		if r.ClearLocation {
			return invalid("location cannot be both set and cleared")
		}
		if err := checkLength("location", *r.Location, 0, MaxLocationLength); err != nil {
			return err
		}
	}
	return nil
}

func checkLength(field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(value)
	if n < minLen {
		return invalid(field + " is required")
	}
	if n > maxLen {
		return invalid(field + " is too long")
	}
	return nil
}
