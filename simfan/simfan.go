// Package simfan is an in-memory Big Ass Fans device. It satisfies the baf
// contracts without any network traffic so the bridge can be paired and
// exercised without hardware.
package simfan

import (
	"context"
	"sync"
	"time"

	"github.com/brutella/hap/log"

	"github.com/cloudkucooland/HomeKitBridges/BAFHKBridge/baf"
)

// Capabilities are the feature flags a simulated device reports
type Capabilities struct {
	Fan              bool `json:"fan" yaml:"fan"`
	Light            bool `json:"light" yaml:"light"`
	ColorTemperature bool `json:"colorTemperature" yaml:"colorTemperature"`
	Eco              bool `json:"eco" yaml:"eco"`
}

// Description is a simulated discovery record
type Description struct {
	model    string
	id       string
	name     string
	firmware string
	caps     Capabilities

	// ReadyDelay, when positive, makes Initialize fire the ready notification on its own after the delay
	ReadyDelay time.Duration

	mu     sync.Mutex
	handle *Fan
}

// NewDescription returns a description for a device with the given identity and capabilities
func NewDescription(name, model, id, firmware string, caps Capabilities) *Description {
	return &Description{
		model:    model,
		id:       id,
		name:     name,
		firmware: firmware,
		caps:     caps,
	}
}

func (d *Description) Model() string    { return d.model }
func (d *Description) DeviceID() string { return d.id }
func (d *Description) Name() string     { return d.name }

// Initialize creates a fresh control handle; it is not ready until Ready is called
func (d *Description) Initialize() baf.Fan {
	f := NewFan(d.caps, d.firmware)

	d.mu.Lock()
	d.handle = f
	d.mu.Unlock()

	if d.ReadyDelay > 0 {
		go func() {
			time.Sleep(d.ReadyDelay)
			log.Debug.Printf("simfan [%s] ready", d.name)
			f.Ready()
		}()
	}
	return f
}

// Handle returns the most recently initialized control handle, nil before Initialize
func (d *Description) Handle() *Fan {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handle
}

// Props holds the concrete properties so callers can inspect or fail them
type Props struct {
	FanMode          *Prop[baf.OperatingMode]
	FanSpeedPercent  *Prop[int]
	FanDirection     *Prop[baf.Direction]
	Whoosh           *Prop[bool]
	LightMode        *Prop[baf.OperatingMode]
	LightPercent     *Prop[int]
	LightTemperature *Prop[int]
	Eco              *Prop[bool]
	Version          *Prop[string]
}

// Fan is a simulated control handle
type Fan struct {
	Props Props

	caps Capabilities

	mu      sync.Mutex
	ready   bool
	readyFn []func(baf.Fan)
}

// NewFan returns a handle with every property at its zero value, except the version
func NewFan(caps Capabilities, firmware string) *Fan {
	return &Fan{
		caps: caps,
		Props: Props{
			FanMode:          NewProp(baf.Off),
			FanSpeedPercent:  NewProp(0),
			FanDirection:     NewProp(baf.Forward),
			Whoosh:           NewProp(false),
			LightMode:        NewProp(baf.Off),
			LightPercent:     NewProp(0),
			LightTemperature: NewProp(370), // mireds, about 2700K
			Eco:              NewProp(false),
			Version:          NewProp(firmware),
		},
	}
}

// OnReady registers fn; if the handle is already ready fn is called right away
func (f *Fan) OnReady(fn func(baf.Fan)) {
	f.mu.Lock()
	f.readyFn = append(f.readyFn, fn)
	ready := f.ready
	f.mu.Unlock()

	if ready {
		fn(f)
	}
}

// Ready fires the ready notification to every registered callback.
// It may be called repeatedly to simulate reconnects.
func (f *Fan) Ready() {
	f.mu.Lock()
	f.ready = true
	fns := make([]func(baf.Fan), len(f.readyFn))
	copy(fns, f.readyFn)
	f.mu.Unlock()

	for _, fn := range fns {
		fn(f)
	}
}

func (f *Fan) HasFan() bool              { return f.caps.Fan }
func (f *Fan) HasLight() bool            { return f.caps.Light }
func (f *Fan) HasColorTemperature() bool { return f.caps.ColorTemperature }
func (f *Fan) HasEco() bool              { return f.caps.Eco }

func (f *Fan) FanMode() baf.Property[baf.OperatingMode]   { return f.Props.FanMode }
func (f *Fan) FanSpeedPercent() baf.Property[int]         { return f.Props.FanSpeedPercent }
func (f *Fan) FanDirection() baf.Property[baf.Direction]  { return f.Props.FanDirection }
func (f *Fan) Whoosh() baf.Property[bool]                 { return f.Props.Whoosh }
func (f *Fan) LightMode() baf.Property[baf.OperatingMode] { return f.Props.LightMode }
func (f *Fan) LightPercent() baf.Property[int]            { return f.Props.LightPercent }
func (f *Fan) LightTemperature() baf.Property[int]        { return f.Props.LightTemperature }
func (f *Fan) Eco() baf.Property[bool]                    { return f.Props.Eco }
func (f *Fan) Version() baf.Property[string]              { return f.Props.Version }

// Prop is a mutex-protected in-memory value
type Prop[T any] struct {
	mu   sync.Mutex
	v    T
	err  error
	gets int
	sets int
}

func NewProp[T any](v T) *Prop[T] {
	return &Prop[T]{v: v}
}

func (p *Prop[T]) Get(ctx context.Context) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gets++
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if p.err != nil {
		return zero, p.err
	}
	return p.v, nil
}

func (p *Prop[T]) Set(ctx context.Context, v T) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sets++
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if p.err != nil {
		return zero, p.err
	}
	p.v = v
	return p.v, nil
}

// Fail makes every following Get and Set return err; nil clears it
func (p *Prop[T]) Fail(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Value reads the stored value without counting as a device call
func (p *Prop[T]) Value() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.v
}

// Calls reports how many Get and Set calls reached the device
func (p *Prop[T]) Calls() (gets, sets int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gets, p.sets
}
