// internal/config/validate.go
package config

import "fmt"

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	m := cfg.Monitor

	// ------------------------------------------------------------
	// SERIAL
	// ------------------------------------------------------------

	if m.Serial.Port == "" {
		return fmt.Errorf("config: serial.port is required")
	}

	// ------------------------------------------------------------
	// SHIFT WINDOW
	// ------------------------------------------------------------

	if m.Shift.StartHour < 0 || m.Shift.StartHour > 23 {
		return fmt.Errorf("config: shift.start_hour %d out of range 0-23", m.Shift.StartHour)
	}
	if m.Shift.StopHour < 1 || m.Shift.StopHour > 24 {
		return fmt.Errorf("config: shift.stop_hour %d out of range 1-24", m.Shift.StopHour)
	}
	if m.Shift.StartHour >= m.Shift.StopHour {
		return fmt.Errorf("config: shift.start_hour %d must be before stop_hour %d",
			m.Shift.StartHour, m.Shift.StopHour)
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if m.Poll.IntervalSec <= 0 {
		return fmt.Errorf("config: poll.interval_sec must be > 0")
	}

	// ------------------------------------------------------------
	// PVOUTPUT
	// ------------------------------------------------------------

	if m.PVOutput.APIKey == "" {
		return fmt.Errorf("config: pvoutput.api_key is required")
	}
	if m.PVOutput.SystemID == "" {
		return fmt.Errorf("config: pvoutput.system_id is required")
	}

	// ------------------------------------------------------------
	// MQTT
	// ------------------------------------------------------------

	if m.MQTT.Broker == "" {
		return fmt.Errorf("config: mqtt.broker is required")
	}
	if m.MQTT.Port <= 0 || m.MQTT.Port > 65535 {
		return fmt.Errorf("config: mqtt.port %d out of range", m.MQTT.Port)
	}
	if m.MQTT.Topic == "" {
		return fmt.Errorf("config: mqtt.topic is required")
	}
	for i := 0; i < len(m.MQTT.Topic); i++ {
		if m.MQTT.Topic[i] > 0x7F {
			return fmt.Errorf("config: mqtt.topic must contain ASCII characters only")
		}
	}

	// ------------------------------------------------------------
	// INFLUX (OPT-IN)
	// ------------------------------------------------------------

	if m.Influx != nil {
		if m.Influx.URL == "" {
			return fmt.Errorf("config: influx.url is required when influx is set")
		}
		if m.Influx.Bucket == "" {
			return fmt.Errorf("config: influx.bucket is required when influx is set")
		}
	}

	return nil
}
