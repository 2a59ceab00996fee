package bafhkbridge

import (
	"github.com/brutella/hap/accessory"
)

const firmware = "0.1.0"

// Bridge is used by the startup to build the generic bridge type on which all the fans hang
func Bridge(name string) *accessory.A {
	if name == "" {
		name = "BigAssFans-Homekit Bridge"
	}

	root := accessory.NewBridge(accessory.Info{
		Name:         name,
		SerialNumber: "1301",
		Manufacturer: "cloudkucooland",
		Model:        "baf-homekit",
		Firmware:     firmware,
	})
	root.A.Id = 1

	return root.A
}
