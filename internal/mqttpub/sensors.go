// internal/mqttpub/sensors.go
package mqttpub

import (
	"strconv"

	"github.com/BruceRobertson/growatt-mqtt/internal/inverter"
)

// sensor describes one published topic and its Home Assistant metadata.
type sensor struct {
	ID             string
	Name           string
	Unit           string
	DeviceClass    string
	StateClass     string
	Icon           string
	EntityCategory string
}

var sensors = []sensor{
	{"pv_power", "PV Power", "W", "power", "measurement", "mdi:solar-power-variant", ""},
	{"pv_volts1", "PV1 Voltage", "V", "voltage", "measurement", "mdi:solar-panel", ""},
	{"pv_amps1", "PV1 Current", "A", "current", "measurement", "mdi:current-dc", ""},
	{"pv_power1", "PV1 Power", "W", "power", "measurement", "mdi:solar-panel", ""},
	{"pv_volts2", "PV2 Voltage", "V", "voltage", "measurement", "mdi:solar-panel", ""},
	{"pv_amps2", "PV2 Current", "A", "current", "measurement", "mdi:current-dc", ""},
	{"pv_power2", "PV2 Power", "W", "power", "measurement", "mdi:solar-panel", ""},
	{"ac_power", "AC Power", "W", "power", "measurement", "mdi:home-lightning-bolt", ""},
	{"ac_volts", "AC Voltage", "V", "voltage", "measurement", "mdi:transmission-tower", ""},
	{"ac_amps", "AC Current", "A", "current", "measurement", "mdi:current-ac", ""},
	{"ac_frequency", "AC Frequency", "Hz", "frequency", "measurement", "mdi:sine-wave", ""},
	{"wh_today", "Energy Today", "Wh", "energy", "total_increasing", "mdi:white-balance-sunny", ""},
	{"wh_total", "Energy Total", "Wh", "energy", "total_increasing", "mdi:lightning-bolt", ""},
	{"temp", "Temperature", "°C", "temperature", "measurement", "mdi:thermometer", ""},
	{"ipm_temp", "IPM Temperature", "°C", "temperature", "measurement", "mdi:thermometer-high", ""},
	{"operation_hours", "Operation Hours", "h", "duration", "total_increasing", "mdi:clock-outline", ""},
	{"status", "Status", "", "", "", "mdi:solar-power", "diagnostic"},
	{"serial_no", "Serial Number", "", "", "", "mdi:identifier", "diagnostic"},
	{"model_no", "Model", "", "", "", "mdi:information-outline", "diagnostic"},
}

// stateValues flattens a reading plus identity into topic-suffix -> value.
// The suffix names are the stable external contract.
func stateValues(r inverter.Reading, id inverter.Identity) map[string]string {
	return map[string]string{
		"status":          r.StatusText(),
		"pv_power":        ftoa(r.PVPower),
		"pv_volts1":       ftoa(r.PV1Volts),
		"pv_amps1":        ftoa(r.PV1Amps),
		"pv_power1":       ftoa(r.PV1Power),
		"pv_volts2":       ftoa(r.PV2Volts),
		"pv_amps2":        ftoa(r.PV2Amps),
		"pv_power2":       ftoa(r.PV2Power),
		"ac_power":        ftoa(r.ACPower),
		"ac_volts":        ftoa(r.ACVolts),
		"ac_amps":         ftoa(r.ACAmps),
		"ac_frequency":    ftoa(r.ACFrequency),
		"wh_today":        ftoa(r.WhToday),
		"wh_total":        ftoa(r.WhTotal),
		"temp":            ftoa(r.Temp),
		"ipm_temp":        ftoa(r.IPMTemp),
		"operation_hours": ftoa(r.OperationHours),
		"serial_no":       id.SerialNo,
		"model_no":        id.ModelNo,
	}
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
