package device

import (
	"errors"

	"github.com/nerrad567/gateway-fleet-core/internal/apperr"
)

// Domain errors for the device package. Each carries an apperr.Kind for the
// HTTP adapter and can be matched with errors.Is:
//
//	if errors.Is(err, device.ErrUIDExists) {
//	    // handle conflict
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = apperr.New(apperr.NotFound, "device not found")

	// ErrUIDExists is returned when another device already owns the uid.
	ErrUIDExists = apperr.New(apperr.Conflict, "device UID already exists")

	// ErrGatewayNotFound is returned when a device names a gateway that does not exist.
	ErrGatewayNotFound = apperr.New(apperr.NotFound, "gateway not found")

	// ErrDeviceTypeNotFound is returned when deviceTypeId matches no catalog entry.
	ErrDeviceTypeNotFound = apperr.New(apperr.BadRequest, "device type not found")

	// ErrRepositoryInconsistent is returned when a row confirmed to exist
	// disappears before it can be updated or deleted.
	ErrRepositoryInconsistent = apperr.New(apperr.Internal, "device store returned no row")

	// ErrInvalidDevice is the cause of every validation failure.
	ErrInvalidDevice = errors.New("device: invalid")
)

// invalid builds a validation error with a client-facing message.
func invalid(msg string) error {
	return apperr.Wrap(apperr.BadRequest, msg, ErrInvalidDevice)
}
