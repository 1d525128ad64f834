package gateway

import (
	"errors"

	"github.com/nerrad567/gateway-fleet-core/internal/apperr"
)

// Domain errors for the gateway package. Each carries an apperr.Kind for
// the HTTP adapter and can be matched with errors.Is.
var (
	// ErrGatewayNotFound is returned when a gateway ID does not exist.
	ErrGatewayNotFound = apperr.New(apperr.NotFound, "gateway not found")

	// ErrSerialNumberExists is returned when another gateway has the serial number.
	ErrSerialNumberExists = apperr.New(apperr.Conflict, "gateway with this serial number already exists")

	// ErrIPAddressExists is returned when another gateway has the IPv4 address.
	ErrIPAddressExists = apperr.New(apperr.Conflict, "gateway with this IP address already exists")

	// ErrDeviceLimitReached is returned when attaching to a full gateway.
	ErrDeviceLimitReached = apperr.New(apperr.BadRequest, "device limit reached")

	// ErrDeviceNotAttached is returned when detaching a device that belongs
	// to another gateway or to none.
	ErrDeviceNotAttached = apperr.New(apperr.BadRequest, "device is not attached to this gateway")

	// ErrRepositoryInconsistent is returned when a row confirmed to exist
	// disappears before it can be updated or deleted.
	ErrRepositoryInconsistent = apperr.New(apperr.Internal, "gateway store returned no row")

	// ErrInvalidGateway is the cause of every validation failure.
	ErrInvalidGateway = errors.New("gateway: invalid")
)

func invalid(msg string) error {
	return apperr.Wrap(apperr.BadRequest, msg, ErrInvalidGateway)
}
