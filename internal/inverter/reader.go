// internal/inverter/reader.go
package inverter

import (
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

// transport is the exact serial contract the reader uses.
type transport interface {
	Connect() error
	Close() error
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
}

// Config is the minimal serial config the reader needs.
type Config struct {
	Port    string
	SlaveID byte
	Timeout time.Duration
}

// Reader owns the RTU connection to one inverter.
//
// The connection handle has two states, closed and open. Every read ensures
// the handle is open first. Any protocol error or short response closes the
// handle so the next read starts from a clean connect; a successful read
// never touches it.
type Reader struct {
	tr   transport
	open bool
	now  func() time.Time
}

// rtuTransport adapts the goburrow RTU handler to the transport contract.
type rtuTransport struct {
	handler *modbus.RTUClientHandler
	client  modbus.Client
}

func (t *rtuTransport) Connect() error { return t.handler.Connect() }
func (t *rtuTransport) Close() error   { return t.handler.Close() }

func (t *rtuTransport) ReadInputRegisters(address, quantity uint16) ([]byte, error) {
	return t.client.ReadInputRegisters(address, quantity)
}

func (t *rtuTransport) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	return t.client.ReadHoldingRegisters(address, quantity)
}

// NewReader creates a reader for the inverter on the given serial port.
// The port is not opened until the first read.
func NewReader(cfg Config) *Reader {
	h := modbus.NewRTUClientHandler(cfg.Port)
	h.BaudRate = 9600
	h.DataBits = 8
	h.Parity = "N"
	h.StopBits = 1
	h.SlaveId = cfg.SlaveID
	h.Timeout = cfg.Timeout

	return &Reader{
		tr:  &rtuTransport{handler: h, client: modbus.NewClient(h)},
		now: time.Now,
	}
}

// ReadInputs reads the live telemetry block and decodes it into a Reading
// stamped with the current local time.
func (r *Reader) ReadInputs() (Reading, error) {
	regs, err := r.readBlock(r.tr.ReadInputRegisters)
	if err != nil {
		return Reading{}, fmt.Errorf("inverter: input register read: %w", err)
	}
	return DecodeReading(regs, r.now())
}

// ReadIdentity reads the identity/firmware block and decodes it.
func (r *Reader) ReadIdentity() (Identity, error) {
	regs, err := r.readBlock(r.tr.ReadHoldingRegisters)
	if err != nil {
		return Identity{}, fmt.Errorf("inverter: holding register read: %w", err)
	}
	return DecodeIdentity(regs)
}

// Close releases the serial port.
func (r *Reader) Close() error {
	if !r.open {
		return nil
	}
	r.open = false
	return r.tr.Close()
}

func (r *Reader) readBlock(read func(address, quantity uint16) ([]byte, error)) ([]uint16, error) {
	if !r.open {
		if err := r.tr.Connect(); err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		r.open = true
	}

	raw, err := read(0, RegisterBlockSize)
	if err != nil {
		r.reset()
		return nil, err
	}

	regs := unpackRegisters(raw)
	if len(regs) < RegisterBlockSize {
		r.reset()
		return nil, fmt.Errorf("%w: got %d registers, expected %d",
			ErrShortRead, len(regs), RegisterBlockSize)
	}

	return regs, nil
}

// reset tears down the connection so the next read reconnects cleanly.
func (r *Reader) reset() {
	_ = r.tr.Close()
	r.open = false
}

// unpackRegisters converts a big-endian payload into register values.
func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
