package bafhkbridge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brutella/hap/log"
	"gopkg.in/yaml.v3"

	"github.com/cloudkucooland/HomeKitBridges/BAFHKBridge/simfan"
)

// Config is the bridge configuration, read from JSON or YAML
type Config struct {
	Pin        string      `json:"pin" yaml:"pin"`               // HomeKit setup pin
	Name       string      `json:"name" yaml:"name"`             // what the bridge shows as
	StatusAddr string      `json:"statusAddr" yaml:"statusAddr"` // ip:port for the status endpoint, empty to disable
	Fans       []FanConfig `json:"fans" yaml:"fans"`             // fans the bridge serves from memory
}

// FanConfig describes one simulated fan
type FanConfig struct {
	Name     string `json:"name" yaml:"name"`
	Model    string `json:"model" yaml:"model"`
	DeviceID string `json:"deviceId" yaml:"deviceId"`
	Firmware string `json:"firmware" yaml:"firmware"`

	simfan.Capabilities `yaml:",inline"`
}

// LoadConfig reads filename over the defaults; a missing file yields the defaults
func LoadConfig(filename string) (*Config, error) {
	conf := Config{
		Pin:  "00102003",
		Name: "BigAssFans-Homekit Bridge",
	}

	raw, err := os.ReadFile(filename)
	if err != nil {
		log.Info.Printf("unable to open config %s: using defaults (%+v)", filename, conf)
		return &conf, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &conf)
	default:
		err = json.Unmarshal(raw, &conf)
	}
	if err != nil {
		log.Info.Printf("unable to parse config %s: %s", filename, err.Error())
		return nil, err
	}
	log.Info.Printf("using config: %+v", conf)

	return &conf, nil
}

// Simulated builds in-memory fans for every configured fan; they become ready after delay
func (c *Config) Simulated(delay time.Duration) *simfan.Discoverer {
	s := &simfan.Discoverer{}
	for _, f := range c.Fans {
		model := f.Model
		if model == "" {
			model = "Haiku H/I Series"
		}
		d := simfan.NewDescription(f.Name, model, f.DeviceID, f.Firmware, f.Capabilities)
		d.ReadyDelay = delay
		s.Devices = append(s.Devices, d)
	}
	return s
}
