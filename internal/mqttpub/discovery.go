// internal/mqttpub/discovery.go
package mqttpub

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// discoveryDevice groups all sensors under one Home Assistant device entry.
type discoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	SWVersion    string   `json:"sw_version"`
}

// discoveryConfig is one retained sensor config document.
type discoveryConfig struct {
	Name              string          `json:"name"`
	StateTopic        string          `json:"state_topic"`
	UniqueID          string          `json:"unique_id"`
	Device            discoveryDevice `json:"device"`
	AvailabilityTopic string          `json:"availability_topic"`
	Icon              string          `json:"icon,omitempty"`
	UnitOfMeasurement string          `json:"unit_of_measurement,omitempty"`
	DeviceClass       string          `json:"device_class,omitempty"`
	StateClass        string          `json:"state_class,omitempty"`
	EntityCategory    string          `json:"entity_category,omitempty"`
}

// publishDiscovery emits one retained config document per sensor. Called on
// every (re)connect so a restarted broker re-learns the device.
func (p *Publisher) publishDiscovery(cli mqtt.Client) {
	device := discoveryDevice{
		Identifiers:  []string{"growatt_" + p.identity.SerialNo},
		Name:         "Growatt Solar Inverter",
		Manufacturer: "Growatt",
		Model:        p.identity.ModelNo,
		SWVersion:    p.identity.Firmware,
	}

	for _, s := range sensors {
		cfg := discoveryConfig{
			Name:              s.Name,
			StateTopic:        p.cfg.Topic + "/" + s.ID,
			UniqueID:          fmt.Sprintf("growatt_%s_%s", p.identity.SerialNo, s.ID),
			Device:            device,
			AvailabilityTopic: p.cfg.Topic + "/availability",
			Icon:              s.Icon,
			UnitOfMeasurement: s.Unit,
			DeviceClass:       s.DeviceClass,
			StateClass:        s.StateClass,
			EntityCategory:    s.EntityCategory,
		}

		body, err := json.Marshal(cfg)
		if err != nil {
			p.log.Errorw("discovery config marshal failed", "sensor", s.ID, "err", err)
			continue
		}

		topic := fmt.Sprintf("%s/sensor/%s/%s/config",
			p.cfg.DiscoveryPrefix, p.identity.SerialNo, s.ID)
		cli.Publish(topic, 0, true, body)
	}

	p.log.Infow("home assistant discovery published", "sensors", len(sensors))
}
