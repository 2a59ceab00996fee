package simfan

import (
	"context"

	"github.com/cloudkucooland/HomeKitBridges/BAFHKBridge/baf"
)

// Discoverer hands back a fixed set of simulated devices
type Discoverer struct {
	Devices []*Description
}

func (s *Discoverer) Discover(ctx context.Context) ([]baf.Description, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := make([]baf.Description, 0, len(s.Devices))
	for _, dev := range s.Devices {
		d = append(d, dev)
	}
	return d, nil
}
