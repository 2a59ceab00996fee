// Package baf describes the Big Ass Fans device-control surface the bridge
// drives. Discovery and the wire protocol live in whatever driver implements
// these interfaces; the bridge only relies on the contracts below.
package baf

import (
	"context"
)

// OperatingMode is the device's on/off/auto mode, used by both the fan and the light
type OperatingMode int

const (
	Off OperatingMode = iota
	On
	Auto
)

func (m OperatingMode) String() string {
	switch m {
	case Off:
		return "Off"
	case On:
		return "On"
	case Auto:
		return "Auto"
	default:
		return "Unknown"
	}
}

// Direction is the fan's rotation direction as the device names it
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "Forward"
	case Reverse:
		return "Reverse"
	default:
		return "Unknown"
	}
}

// Property is one readable/writable value on the device.
// Set returns the value the device confirmed, which may differ from the one requested.
type Property[T any] interface {
	Get(ctx context.Context) (T, error)
	Set(ctx context.Context, v T) (T, error)
}

// Fan is a live control handle for one device
type Fan interface {
	// OnReady registers fn to be called once the underlying connection is usable.
	// Implementations may call it more than once (e.g. after a reconnect).
	OnReady(fn func(Fan))

	HasFan() bool
	HasLight() bool
	HasColorTemperature() bool
	HasEco() bool

	FanMode() Property[OperatingMode]
	FanSpeedPercent() Property[int]
	FanDirection() Property[Direction]
	Whoosh() Property[bool]

	LightMode() Property[OperatingMode]
	LightPercent() Property[int]
	LightTemperature() Property[int] // mireds; drivers for kelvin-native fans convert

	Eco() Property[bool]
	Version() Property[string]
}

// Description identifies a discovered device and produces its control handle
type Description interface {
	Model() string
	DeviceID() string
	Name() string

	// Initialize opens the control handle; it must not block waiting for the device
	Initialize() Fan
}

// Discoverer returns the devices currently known to the driver
type Discoverer interface {
	Discover(ctx context.Context) ([]Description, error)
}
