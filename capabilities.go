package bafhkbridge

import (
	"context"
	"math"

	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"

	"github.com/cloudkucooland/HomeKitBridges/BAFHKBridge/baf"
)

// switch subtypes, kept stable so existing pairings find the same services
const (
	subtypeWhoosh = "fan-switch-1"
	subtypeEco    = "fan-switch-2"
)

// capability maps one device capability flag to the service it is exposed as
type capability struct {
	name     string
	has      func(baf.Fan) bool
	typ      string // HAP service type
	subtype  string // empty for the single service of its type
	label    string // service Name; empty means the device name, "-" means none
	bindings func(baf.Fan) []binding
}

var capabilities = []capability{
	{
		name:     "fan",
		has:      baf.Fan.HasFan,
		typ:      service.TypeFanV2,
		bindings: fanBindings,
	},
	{
		name:     "whoosh",
		has:      baf.Fan.HasFan,
		typ:      service.TypeSwitch,
		subtype:  subtypeWhoosh,
		label:    "Whoosh",
		bindings: whooshBindings,
	},
	{
		name:     "light",
		has:      baf.Fan.HasLight,
		typ:      service.TypeLightbulb,
		label:    "-",
		bindings: lightBindings,
	},
	{
		name:     "eco",
		has:      baf.Fan.HasEco,
		typ:      service.TypeSwitch,
		subtype:  subtypeEco,
		label:    "Eco Mode",
		bindings: ecoBindings,
	},
}

func newActive() *characteristic.C            { return characteristic.NewActive().C }
func newRotationSpeed() *characteristic.C     { return characteristic.NewRotationSpeed().C }
func newRotationDirection() *characteristic.C { return characteristic.NewRotationDirection().C }
func newOn() *characteristic.C                { return characteristic.NewOn().C }
func newBrightness() *characteristic.C        { return characteristic.NewBrightness().C }
func newColorTemperature() *characteristic.C  { return characteristic.NewColorTemperature().C }
func newName() *characteristic.C              { return characteristic.NewName().C }

func fanBindings(f baf.Fan) []binding {
	return []binding{
		{
			name: "Active",
			typ:  characteristic.TypeActive,
			newC: newActive,
			get: func(ctx context.Context) (interface{}, error) {
				mode, err := f.FanMode().Get(ctx)
				if err != nil {
					return nil, err
				}
				return lookup(modeToActive, mode, ErrUnmappedValue)
			},
			set: func(ctx context.Context, v interface{}) (interface{}, error) {
				i, ok := toInt(v)
				if !ok {
					return nil, invalid("Active", v)
				}
				mode, err := lookup(activeToMode, i, ErrInvalidValue)
				if err != nil {
					return nil, err
				}
				confirmed, err := f.FanMode().Set(ctx, mode)
				if err != nil {
					return nil, err
				}
				return lookup(modeToActive, confirmed, ErrUnmappedValue)
			},
		},
		{
			name: "RotationSpeed",
			typ:  characteristic.TypeRotationSpeed,
			newC: newRotationSpeed,
			get: func(ctx context.Context) (interface{}, error) {
				pct, err := f.FanSpeedPercent().Get(ctx)
				if err != nil {
					return nil, err
				}
				return float64(pct), nil
			},
			set: func(ctx context.Context, v interface{}) (interface{}, error) {
				n, ok := toFloat(v)
				if !ok {
					return nil, invalid("RotationSpeed", v)
				}
				confirmed, err := f.FanSpeedPercent().Set(ctx, int(math.Round(n)))
				if err != nil {
					return nil, err
				}
				return float64(confirmed), nil
			},
		},
		{
			name: "RotationDirection",
			typ:  characteristic.TypeRotationDirection,
			newC: newRotationDirection,
			get: func(ctx context.Context) (interface{}, error) {
				d, err := f.FanDirection().Get(ctx)
				if err != nil {
					return nil, err
				}
				return lookup(directionToRotation, d, ErrUnmappedValue)
			},
			set: func(ctx context.Context, v interface{}) (interface{}, error) {
				i, ok := toInt(v)
				if !ok {
					return nil, invalid("RotationDirection", v)
				}
				d, err := lookup(rotationToDirection, i, ErrInvalidValue)
				if err != nil {
					return nil, err
				}
				confirmed, err := f.FanDirection().Set(ctx, d)
				if err != nil {
					return nil, err
				}
				return lookup(directionToRotation, confirmed, ErrUnmappedValue)
			},
		},
	}
}

func whooshBindings(f baf.Fan) []binding {
	return []binding{
		boolBinding("Whoosh", characteristic.TypeOn, newOn, f.Whoosh()),
	}
}

func ecoBindings(f baf.Fan) []binding {
	return []binding{
		boolBinding("Eco Mode", characteristic.TypeOn, newOn, f.Eco()),
	}
}

func lightBindings(f baf.Fan) []binding {
	temperature := intBinding("ColorTemperature", characteristic.TypeColorTemperature, newColorTemperature, f.LightTemperature())
	temperature.when = baf.Fan.HasColorTemperature

	return []binding{
		{
			name: "On",
			typ:  characteristic.TypeOn,
			newC: newOn,
			get: func(ctx context.Context) (interface{}, error) {
				mode, err := f.LightMode().Get(ctx)
				if err != nil {
					return nil, err
				}
				return mode == baf.On, nil
			},
			set: func(ctx context.Context, v interface{}) (interface{}, error) {
				on, ok := toBool(v)
				if !ok {
					return nil, invalid("On", v)
				}
				mode := baf.Off
				if on {
					mode = baf.On
				}
				confirmed, err := f.LightMode().Set(ctx, mode)
				if err != nil {
					return nil, err
				}
				return confirmed == baf.On, nil
			},
		},
		intBinding("Brightness", characteristic.TypeBrightness, newBrightness, f.LightPercent()),
		temperature,
	}
}

// versionBinding backs the read-only FirmwareRevision
func versionBinding(f baf.Fan) binding {
	return binding{
		name: "FirmwareRevision",
		typ:  characteristic.TypeFirmwareRevision,
		get: func(ctx context.Context) (interface{}, error) {
			return f.Version().Get(ctx)
		},
	}
}
