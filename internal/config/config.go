// internal/config/config.go
package config

type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
}

type MonitorConfig struct {
	Serial   SerialConfig   `yaml:"serial"`
	Shift    ShiftConfig    `yaml:"shift"`
	Poll     PollConfig     `yaml:"poll"`
	PVOutput PVOutputConfig `yaml:"pvoutput"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Influx   *InfluxConfig  `yaml:"influx"` // optional sink, opt-in
	LogLevel string         `yaml:"log_level"`
}

// ---- SERIAL ----

type SerialConfig struct {
	Port    string `yaml:"port"`
	SlaveID uint8  `yaml:"slave_id"`
}

// ---- SHIFT WINDOW ----

type ShiftConfig struct {
	StartHour int `yaml:"start_hour"`
	StopHour  int `yaml:"stop_hour"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalSec int `yaml:"interval_sec"`
}

// ---- PVOUTPUT ----

type PVOutputConfig struct {
	APIKey   string `yaml:"api_key"`
	SystemID string `yaml:"system_id"`
}

// ---- MQTT ----

type MQTTConfig struct {
	Broker          string `yaml:"broker"`
	Port            int    `yaml:"port"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Topic           string `yaml:"topic"`
	DiscoveryEnable *bool  `yaml:"discovery_enable"` // default true
	DiscoveryPrefix string `yaml:"discovery_prefix"` // default "homeassistant"
}

// ---- INFLUX ----

type InfluxConfig struct {
	URL    string `yaml:"url"`
	Org    string `yaml:"org"`
	Token  string `yaml:"token"`
	Bucket string `yaml:"bucket"`
}
