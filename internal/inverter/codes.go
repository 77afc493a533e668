// internal/inverter/codes.go
package inverter

import "fmt"

// StatusUnknown is the sentinel used before the first successful read and
// after a failed one.
const StatusUnknown = -1

var statusCodes = map[int]string{
	0: "Waiting",
	1: "Normal",
	3: "Fault",
}

var faultCodes = map[int]string{
	0:  "None",
	24: "Auto Test Failed",
	25: "No AC Connection",
	26: "PV Isolation Low",
	27: "Residual I High",
	28: "Output High DCI",
	29: "PV Voltage High",
	30: "AC V Outrange",
	31: "AC F Outrange",
	32: "Module Hot",
}

var warningCodes = map[int]string{
	0x0000: "None",
	0x0001: "Fan warning",
	0x0002: "String communication abnormal",
	0x0004: "StrPID config Warning",
	0x0008: "Fail to read EEPROM",
	0x0010: "DSP and COM firmware unmatch",
	0x0020: "Fail to write EEPROM",
	0x0040: "SPD abnormal",
	0x0080: "GND and N connect abnormal",
	0x0100: "PV1 or PV2 circuit short",
	0x0200: "PV1 or PV2 boost driver broken",
}

// StatusText maps a device status code to its protocol name.
// Unknown codes are rendered numerically so they still show up downstream.
func StatusText(code int) string {
	if s, ok := statusCodes[code]; ok {
		return s
	}
	return fmt.Sprintf("Unknown (%d)", code)
}

// FaultText maps a fault code to its protocol name. Codes 1-23 are the
// device's generic error range 100-122.
func FaultText(code int) string {
	if s, ok := faultCodes[code]; ok {
		return s
	}
	if code >= 1 && code <= 23 {
		return fmt.Sprintf("Generic Error Code: %d", 99+code)
	}
	return fmt.Sprintf("Unknown (%d)", code)
}

// WarningText maps a warning bitfield value to its protocol name.
func WarningText(code int) string {
	if s, ok := warningCodes[code]; ok {
		return s
	}
	return fmt.Sprintf("Unknown (0x%04X)", code)
}
