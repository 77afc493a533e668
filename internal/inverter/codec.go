// internal/inverter/codec.go
package inverter

import (
	"errors"
	"fmt"
	"time"
)

// RegisterBlockSize is the number of registers both read operations expect.
// The first 45 input registers carry all live telemetry; the first 45 holding
// registers carry identity and firmware data.
const RegisterBlockSize = 45

// ErrShortRead reports a register block shorter than RegisterBlockSize.
var ErrShortRead = errors.New("inverter: short register read")

// Reading is an immutable snapshot decoded from one input-register block.
type Reading struct {
	At     time.Time
	Status int

	PVPower  float64 // combined DC power, W
	PV1Volts float64
	PV1Amps  float64
	PV1Power float64
	PV2Volts float64
	PV2Amps  float64
	PV2Power float64

	ACPower     float64
	ACVolts     float64
	ACAmps      float64
	ACFrequency float64

	WhToday float64
	WhTotal float64

	Temp    float64 // inverter heatsink temperature
	IPMTemp float64

	OperationHours float64
}

// StatusText resolves the device status code to its protocol name.
func (r Reading) StatusText() string {
	return StatusText(r.Status)
}

// Identity holds the device information decoded from the holding-register block.
type Identity struct {
	Firmware        string
	ControlFirmware string
	SerialNo        string
	ModelNo         string
	DeviceTypeCode  int
}

// Input-register offsets. Scale is 10 unless noted otherwise.
const (
	regStatus      = 0
	regPVPower     = 1 // double
	regPV1Volts    = 3
	regPV1Amps     = 4
	regPV1Power    = 5 // double
	regPV2Volts    = 7
	regPV2Amps     = 8
	regPV2Power    = 9  // double
	regACPower     = 11 // double
	regACFrequency = 13 // scale 100
	regACVolts     = 14
	regACAmps      = 15
	regWhToday     = 26 // double, scale 0.01
	regWhTotal     = 28 // double, scale 0.01
	regOpHours     = 30 // double, scale 7200
	regTemp        = 32
	regIPMTemp     = 41
)

// Holding-register offsets.
const (
	regFirmware       = 9  // 3 registers
	regControlFW      = 12 // 3 registers
	regSerialNo       = 23 // 5 registers
	regModelNo        = 28 // double
	regDeviceTypeCode = 43
)

// scaledSingle decodes one register as value/scale.
func scaledSingle(regs []uint16, index int, scale float64) float64 {
	return float64(regs[index]) / scale
}

// scaledDouble combines two consecutive registers, high word first,
// into a 32-bit value and applies the scale.
func scaledDouble(regs []uint16, index int, scale float64) float64 {
	raw := uint32(regs[index])<<16 | uint32(regs[index+1])
	return float64(raw) / scale
}

// decodeString reads count registers starting at start, two ASCII
// characters per register, high byte then low byte.
func decodeString(regs []uint16, start, count int) string {
	b := make([]byte, 0, count*2)
	for i := start; i < start+count; i++ {
		b = append(b, byte(regs[i]>>8), byte(regs[i]&0xFF))
	}
	return string(b)
}

// decodeModelNo renders the 32-bit model bitfield as six 4-bit digits,
// e.g. 0x123456 -> "T1 Q2 P3 U4 M5 S6".
func decodeModelNo(raw uint32) string {
	return fmt.Sprintf("T%d Q%d P%d U%d M%d S%d",
		(raw&0xF00000)>>20,
		(raw&0x0F0000)>>16,
		(raw&0x00F000)>>12,
		(raw&0x000F00)>>8,
		(raw&0x0000F0)>>4,
		raw&0x00000F,
	)
}

// DecodeReading decodes an input-register block into a Reading stamped at.
// Fewer than RegisterBlockSize registers yields ErrShortRead and no Reading.
func DecodeReading(regs []uint16, at time.Time) (Reading, error) {
	if len(regs) < RegisterBlockSize {
		return Reading{}, fmt.Errorf("%w: got %d registers, expected %d",
			ErrShortRead, len(regs), RegisterBlockSize)
	}

	return Reading{
		At:     at,
		Status: int(regs[regStatus]),

		PVPower:  scaledDouble(regs, regPVPower, 10),
		PV1Volts: scaledSingle(regs, regPV1Volts, 10),
		PV1Amps:  scaledSingle(regs, regPV1Amps, 10),
		PV1Power: scaledDouble(regs, regPV1Power, 10),
		PV2Volts: scaledSingle(regs, regPV2Volts, 10),
		PV2Amps:  scaledSingle(regs, regPV2Amps, 10),
		PV2Power: scaledDouble(regs, regPV2Power, 10),

		ACPower:     scaledDouble(regs, regACPower, 10),
		ACFrequency: scaledSingle(regs, regACFrequency, 100),
		ACVolts:     scaledSingle(regs, regACVolts, 10),
		ACAmps:      scaledSingle(regs, regACAmps, 10),

		WhToday: scaledDouble(regs, regWhToday, 0.01),
		WhTotal: scaledDouble(regs, regWhTotal, 0.01),

		OperationHours: scaledDouble(regs, regOpHours, 7200),
		Temp:           scaledSingle(regs, regTemp, 10),
		IPMTemp:        scaledSingle(regs, regIPMTemp, 10),
	}, nil
}

// DecodeIdentity decodes a holding-register block into an Identity.
func DecodeIdentity(regs []uint16) (Identity, error) {
	if len(regs) < RegisterBlockSize {
		return Identity{}, fmt.Errorf("%w: got %d registers, expected %d",
			ErrShortRead, len(regs), RegisterBlockSize)
	}

	raw := uint32(regs[regModelNo])<<16 | uint32(regs[regModelNo+1])

	return Identity{
		Firmware:        decodeString(regs, regFirmware, 3),
		ControlFirmware: decodeString(regs, regControlFW, 3),
		SerialNo:        decodeString(regs, regSerialNo, 5),
		ModelNo:         decodeModelNo(raw),
		DeviceTypeCode:  int(regs[regDeviceTypeCode]),
	}, nil
}
