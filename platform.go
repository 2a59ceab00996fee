package bafhkbridge

import (
	"context"
	"sort"
	"sync"

	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/log"

	"github.com/cloudkucooland/HomeKitBridges/BAFHKBridge/baf"
)

// Platform owns every fan accessory the bridge serves
type Platform struct {
	discoverer baf.Discoverer
	refresh    chan bool

	mu   sync.Mutex
	fans map[string]*BigAssFan // by device id
}

// NewPlatform returns a platform that finds fans through d.
// refresh is poked (without blocking) whenever the set of HomeKit services changes
// and the HAP server needs to be restarted to publish them; it may be nil.
func NewPlatform(d baf.Discoverer, refresh chan bool) *Platform {
	return &Platform{
		discoverer: d,
		refresh:    refresh,
		fans:       make(map[string]*BigAssFan),
	}
}

// Startup asks the discoverer for devices and creates accessories for any not yet known
func (p *Platform) Startup(ctx context.Context) error {
	descriptions, err := p.discoverer.Discover(ctx)
	if err != nil {
		log.Info.Printf("discovery failed: %s", err.Error())
		return err
	}

	added := 0
	p.mu.Lock()
	for _, d := range descriptions {
		if _, ok := p.fans[d.DeviceID()]; ok {
			continue
		}
		// bound never takes p.mu, so a handle that is ready at once cannot deadlock here
		p.fans[d.DeviceID()] = NewBigAssFan(d, p.bound)
		added++
	}
	p.mu.Unlock()

	log.Info.Printf("discovery complete, %d new of %d devices", added, len(descriptions))
	return nil
}

func (p *Platform) bound(f *BigAssFan) {
	log.Info.Printf("[%s] ready: %v", f.Description().Name(), f.Capabilities())
	if p.refresh == nil {
		return
	}
	select {
	case p.refresh <- true:
	default:
		// a restart is already pending
	}
}

// Fans returns the accessories sorted by name
func (p *Platform) Fans() []*BigAssFan {
	p.mu.Lock()
	defer p.mu.Unlock()

	fans := make([]*BigAssFan, 0, len(p.fans))
	for _, f := range p.fans {
		fans = append(fans, f)
	}
	sort.Slice(fans, func(i, j int) bool {
		return fans[i].Description().Name() < fans[j].Description().Name()
	})
	return fans
}

// Fan looks up one accessory by device id
func (p *Platform) Fan(deviceID string) (*BigAssFan, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.fans[deviceID]
	return f, ok
}

// Devices returns the bound accessories, ready for HAP to start a hap.Server.
// Fans still waiting on their device are left out: binding adds services the
// server would be reading, and the restart requested on bind publishes them.
func (p *Platform) Devices() []*accessory.A {
	var a []*accessory.A
	for _, f := range p.Fans() {
		if f.State() != StateBound {
			continue
		}
		a = append(a, f.A)
	}
	return a
}
