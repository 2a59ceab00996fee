package bafhkbridge

import (
	"errors"
)

var (
	// ErrInvalidValue is returned when HomeKit hands a setter a value of the wrong type or outside its enum
	ErrInvalidValue = errors.New("invalid value")

	// ErrUnmappedValue is returned when the device reports a value HomeKit has no equivalent for
	ErrUnmappedValue = errors.New("device value has no HomeKit equivalent")
)

// HAP status codes returned to the controller
const (
	statusSuccess              = 0
	statusCommunicationFailure = -70402
	statusInvalidValue         = -70410
)

func hapStatus(err error) int {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, ErrInvalidValue):
		return statusInvalidValue
	default:
		return statusCommunicationFailure
	}
}
