package bafhkbridge

import (
	"fmt"

	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/log"

	"github.com/cloudkucooland/HomeKitBridges/BAFHKBridge/baf"
)

// HAP RotationDirection values
const (
	rotationClockwise        = 0
	rotationCounterClockwise = 1
)

// homekit Active -> device mode
var activeToMode = map[int]baf.OperatingMode{
	characteristic.ActiveActive:   baf.On,
	characteristic.ActiveInactive: baf.Off,
}

// device mode -> homekit Active; Auto means the fan is running under its own control
var modeToActive = map[baf.OperatingMode]int{
	baf.On:   characteristic.ActiveActive,
	baf.Off:  characteristic.ActiveInactive,
	baf.Auto: characteristic.ActiveActive,
}

// counter-clockwise is Forward on these fans, keep it that way
var rotationToDirection = map[int]baf.Direction{
	rotationCounterClockwise: baf.Forward,
	rotationClockwise:        baf.Reverse,
}

var directionToRotation = map[baf.Direction]int{
	baf.Forward: rotationCounterClockwise,
	baf.Reverse: rotationClockwise,
}

func init() {
	if err := validateMappings(); err != nil {
		log.Info.Panic(err)
	}
}

func validateMappings() error {
	if err := checkRoundTrip("Active", activeToMode, modeToActive); err != nil {
		return err
	}
	if err := checkRoundTrip("RotationDirection", rotationToDirection, directionToRotation); err != nil {
		return err
	}
	return nil
}

// checkRoundTrip verifies that every value written through fwd reads back through rev unchanged
func checkRoundTrip[K comparable, V comparable](name string, fwd map[K]V, rev map[V]K) error {
	for k, v := range fwd {
		back, ok := rev[v]
		if !ok {
			return fmt.Errorf("%s mapping: %v -> %v has no reverse entry", name, k, v)
		}
		if back != k {
			return fmt.Errorf("%s mapping: %v -> %v reads back as %v", name, k, v, back)
		}
	}
	return nil
}

// lookup translates v with m, reporting a value outside the table as err
func lookup[K comparable, V any](m map[K]V, k K, err error) (V, error) {
	v, ok := m[k]
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w: %v", err, k)
	}
	return v, nil
}
