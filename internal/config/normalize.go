// internal/config/normalize.go
package config

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	m := &cfg.Monitor

	if m.Serial.SlaveID == 0 {
		m.Serial.SlaveID = 1
	}

	if m.MQTT.DiscoveryEnable == nil {
		enabled := true
		m.MQTT.DiscoveryEnable = &enabled
	}
	if m.MQTT.DiscoveryPrefix == "" {
		m.MQTT.DiscoveryPrefix = "homeassistant"
	}

	if m.LogLevel == "" {
		m.LogLevel = "warn"
	}
}
