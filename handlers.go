package bafhkbridge

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/log"

	"github.com/cloudkucooland/HomeKitBridges/BAFHKBridge/baf"
)

type getter func(ctx context.Context) (interface{}, error)
type setter func(ctx context.Context, v interface{}) (interface{}, error)

// binding ties one HomeKit characteristic to a device property
type binding struct {
	name string                   // characteristic name, for logs and errors
	typ  string                   // HAP characteristic type
	newC func() *characteristic.C // used when the service does not have the characteristic yet
	when func(baf.Fan) bool       // optional extra capability check
	get  getter
	set  setter // nil for read-only characteristics
}

// attach installs b's handlers on c; label identifies the accessory in logs
func attach(c *characteristic.C, b binding, label string) {
	c.ValueRequestFunc = func(r *http.Request) (interface{}, int) {
		v, err := b.get(requestContext(r))
		if err != nil {
			log.Info.Printf("[%s] get %s: %s", label, b.name, err.Error())
			return nil, hapStatus(err)
		}
		log.Debug.Printf("[%s] get %s: %v", label, b.name, v)
		remember(c, v)
		return v, statusSuccess
	}

	if b.set == nil {
		return
	}

	c.SetValueRequestFunc = func(v interface{}, r *http.Request) (interface{}, int) {
		confirmed, err := b.set(requestContext(r), v)
		if err != nil {
			log.Info.Printf("[%s] set %s to %v: %s", label, b.name, v, err.Error())
			return nil, hapStatus(err)
		}
		log.Debug.Printf("[%s] set %s to %v, device confirmed %v", label, b.name, v, confirmed)
		remember(c, confirmed)
		return confirmed, statusSuccess
	}
}

// remember stores what the device reported as c's cached value.
// hap answers a write matching the cached value itself, without calling SetValueRequestFunc,
// so a stale cache would swallow writes after the device changed on its own.
// A nil request only updates the cache, it does not call back into the request funcs.
func remember(c *characteristic.C, v interface{}) {
	c.SetValueRequest(v, nil)
}

// the server asks for values itself with a nil request
func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}

func invalid(name string, v interface{}) error {
	return fmt.Errorf("%s: %w %v (%T)", name, ErrInvalidValue, v, v)
}

// toFloat accepts any Go numeric kind
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toInt accepts numeric values that carry no fractional part
func toInt(v interface{}) (int, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// toBool accepts bools, and the 0/1 integers some controllers send for bool characteristics
func toBool(v interface{}) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	i, ok := toInt(v)
	if !ok || (i != 0 && i != 1) {
		return false, false
	}
	return i == 1, true
}

// boolBinding passes a bool straight through to p
func boolBinding(name, typ string, newC func() *characteristic.C, p baf.Property[bool]) binding {
	return binding{
		name: name,
		typ:  typ,
		newC: newC,
		get: func(ctx context.Context) (interface{}, error) {
			return p.Get(ctx)
		},
		set: func(ctx context.Context, v interface{}) (interface{}, error) {
			b, ok := toBool(v)
			if !ok {
				return nil, invalid(name, v)
			}
			return p.Set(ctx, b)
		},
	}
}

// intBinding passes an integer straight through to p; range checks are the device's business
func intBinding(name, typ string, newC func() *characteristic.C, p baf.Property[int]) binding {
	return binding{
		name: name,
		typ:  typ,
		newC: newC,
		get: func(ctx context.Context) (interface{}, error) {
			return p.Get(ctx)
		},
		set: func(ctx context.Context, v interface{}) (interface{}, error) {
			i, ok := toInt(v)
			if !ok {
				return nil, invalid(name, v)
			}
			return p.Set(ctx, i)
		},
	}
}
