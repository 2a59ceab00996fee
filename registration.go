package bafhkbridge

import (
	"sync"

	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"
)

type serviceKey struct {
	typ     string
	subtype string
}

// registration is the host accessory plus an index of its services by type and subtype.
// HAP has no notion of subtypes, so subtyped services are recognized by their Name.
type registration struct {
	*accessory.A

	mu    sync.Mutex
	index map[serviceKey]*service.S
}

func newRegistration(a *accessory.A) *registration {
	return &registration{
		A:     a,
		index: make(map[serviceKey]*service.S),
	}
}

// lookup finds an existing service; name is only consulted for subtyped services
func (r *registration) lookup(typ, subtype, name string) *service.S {
	key := serviceKey{typ, subtype}
	if s, ok := r.index[key]; ok {
		return s
	}

	for _, s := range r.A.Ss {
		if s.Type != typ || r.claimed(s) {
			continue
		}
		if subtype != "" && serviceName(s) != name {
			continue
		}
		r.index[key] = s
		return s
	}
	return nil
}

// add attaches a fully built service to the accessory
func (r *registration) add(typ, subtype string, s *service.S) {
	r.A.AddS(s)
	r.index[serviceKey{typ, subtype}] = s
}

func (r *registration) claimed(s *service.S) bool {
	for _, is := range r.index {
		if is == s {
			return true
		}
	}
	return false
}

func (r *registration) count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range r.A.Ss {
		if s.Type == typ {
			n++
		}
	}
	return n
}

func serviceName(s *service.S) string {
	c := findC(s, characteristic.TypeName)
	if c == nil {
		return ""
	}
	return (&characteristic.String{C: c}).Value()
}

func findC(s *service.S, typ string) *characteristic.C {
	for _, c := range s.Cs {
		if c.Type == typ {
			return c
		}
	}
	return nil
}

// obtainC returns the service's characteristic of type typ, adding one from newC if missing
func obtainC(s *service.S, typ string, newC func() *characteristic.C) *characteristic.C {
	if c := findC(s, typ); c != nil {
		return c
	}
	c := newC()
	s.AddC(c)
	return c
}
