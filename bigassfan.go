package bafhkbridge

import (
	"encoding/hex"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/log"
	"github.com/brutella/hap/service"

	"github.com/cloudkucooland/HomeKitBridges/BAFHKBridge/baf"
)

const manufacturer = "BigAssFans"

// State is where an accessory is in its lifecycle
type State int32

const (
	StateUninitialized State = iota // waiting for the device to become ready
	StateBound                      // services and handlers attached
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBound:
		return "bound"
	default:
		return "unknown"
	}
}

// BoundFunc is called once an accessory has attached its services
type BoundFunc func(*BigAssFan)

// BigAssFan binds one discovered fan to its HomeKit accessory
type BigAssFan struct {
	*registration

	description baf.Description
	handle      baf.Fan
	onBound     BoundFunc

	once     sync.Once
	state    atomic.Int32
	services map[string]*service.S // by capability name
}

// NewBigAssFan builds a fresh HomeKit accessory for d and starts initializing its control handle
func NewBigAssFan(d baf.Description, onBound BoundFunc) *BigAssFan {
	info := accessory.Info{
		Name:         d.Name(),
		SerialNumber: d.DeviceID(),
		Manufacturer: manufacturer,
		Model:        d.Model(),
	}

	a := accessory.New(info, accessory.TypeFan)
	// keep the ID stable so HomeKit keeps the accessory across restarts
	a.Id = id(d.DeviceID())

	return Attach(a, d, onBound)
}

// Attach binds d to an existing HomeKit accessory, reusing any services it already has
func Attach(a *accessory.A, d baf.Description, onBound BoundFunc) *BigAssFan {
	b := &BigAssFan{
		registration: newRegistration(a),
		description:  d,
		onBound:      onBound,
		services:     make(map[string]*service.S),
	}

	log.Info.Printf("[%s] initializing %s (%s)", d.Name(), d.Model(), d.DeviceID())
	b.handle = d.Initialize()
	b.handle.OnReady(b.ready)

	return b
}

func (b *BigAssFan) ready(f baf.Fan) {
	fired := false
	b.once.Do(func() {
		fired = true
		b.bind(f)
		b.state.Store(int32(StateBound))
	})

	if !fired {
		log.Info.Printf("[%s] ignoring repeated ready notification", b.description.Name())
		return
	}

	if b.onBound != nil {
		b.onBound(b)
	}
}

// bind attaches accessory information and every service the device is capable of.
// Services already on the accessory are reused.
func (b *BigAssFan) bind(f baf.Fan) {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := b.description
	label := d.Name()

	b.A.Info.Manufacturer.SetValue(manufacturer)
	b.A.Info.Model.SetValue(d.Model())
	b.A.Info.SerialNumber.SetValue(d.DeviceID())
	attach(b.A.Info.FirmwareRevision.C, versionBinding(f), label)

	for _, cp := range capabilities {
		if !cp.has(f) {
			continue
		}

		name := cp.label
		switch name {
		case "":
			name = d.Name()
		case "-":
			name = ""
		}

		s := b.lookup(cp.typ, cp.subtype, name)
		fresh := s == nil
		if fresh {
			s = service.New(cp.typ)
		}

		if name != "" {
			n := obtainC(s, characteristic.TypeName, newName)
			(&characteristic.String{C: n}).SetValue(name)
		}

		for _, bd := range cp.bindings(f) {
			if bd.when != nil && !bd.when(f) {
				continue
			}
			attach(obtainC(s, bd.typ, bd.newC), bd, label)
		}

		// characteristics go in before the service is added to the accessory
		if fresh {
			b.add(cp.typ, cp.subtype, s)
		}
		b.services[cp.name] = s
		log.Info.Printf("[%s] bound %s", label, cp.name)
	}
}

// State reports whether the device has become ready and been bound
func (b *BigAssFan) State() State {
	return State(b.state.Load())
}

// Description returns the discovery record this accessory was built from
func (b *BigAssFan) Description() baf.Description {
	return b.description
}

// Service returns the service bound for a capability ("fan", "whoosh", "light", "eco"), nil if none
func (b *BigAssFan) Service(capability string) *service.S {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.services[capability]
}

// Capabilities lists the capabilities that have been bound, in table order
func (b *BigAssFan) Capabilities() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var c []string
	for _, cp := range capabilities {
		if _, ok := b.services[cp.name]; ok {
			c = append(c, cp.name)
		}
	}
	return c
}

// id converts the device id (a MAC address) into the accessory ID.
// 1 is reserved for the bridge.
func id(deviceID string) uint64 {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return r
		}
		return -1
	}, deviceID)
	if len(clean) > 12 {
		clean = clean[:12]
	}

	var ID uint64
	mac, err := hex.DecodeString(clean)
	if err != nil || len(mac) == 0 {
		log.Info.Printf("odd device id [%s], hashing it", deviceID)
		h := fnv.New64a()
		h.Write([]byte(deviceID))
		ID = h.Sum64()
	} else {
		for _, v := range mac {
			ID = ID<<8 | uint64(v)
		}
	}

	if ID <= 1 {
		ID += 2
	}
	return ID
}
