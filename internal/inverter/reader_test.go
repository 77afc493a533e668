// internal/inverter/reader_test.go
package inverter

import (
	"errors"
	"testing"
	"time"
)

// fakeTransport records lifecycle calls and serves canned register payloads.
type fakeTransport struct {
	connectErr error
	inputResp  []byte
	inputErr   error

	connects int
	closes   int
}

func (f *fakeTransport) Connect() error { f.connects++; return f.connectErr }
func (f *fakeTransport) Close() error   { f.closes++; return nil }

func (f *fakeTransport) ReadInputRegisters(address, quantity uint16) ([]byte, error) {
	return f.inputResp, f.inputErr
}

func (f *fakeTransport) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	return f.inputResp, f.inputErr
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}

func newTestReader(tr transport, at time.Time) *Reader {
	return &Reader{tr: tr, now: func() time.Time { return at }}
}

func TestReadInputs_Success(t *testing.T) {
	at := time.Date(2026, 6, 15, 10, 0, 0, 0, time.Local)
	fake := &fakeTransport{inputResp: packRegisters(inputBlock())}

	r := newTestReader(fake, at)

	reading, err := r.ReadInputs()
	if err != nil {
		t.Fatalf("ReadInputs err=%v", err)
	}
	if !reading.At.Equal(at) {
		t.Fatalf("reading not stamped: got %v", reading.At)
	}
	if fake.connects != 1 {
		t.Fatalf("expected 1 connect, got %d", fake.connects)
	}
	if fake.closes != 0 {
		t.Fatalf("success must not close the connection, got %d closes", fake.closes)
	}

	// connection is reused on the next read
	if _, err := r.ReadInputs(); err != nil {
		t.Fatalf("second ReadInputs err=%v", err)
	}
	if fake.connects != 1 {
		t.Fatalf("expected connection reuse, got %d connects", fake.connects)
	}
}

func TestReadInputs_ProtocolErrorClosesConnection(t *testing.T) {
	fake := &fakeTransport{inputErr: errors.New("modbus: exception 4")}
	r := newTestReader(fake, time.Now())

	if _, err := r.ReadInputs(); err == nil {
		t.Fatalf("expected error")
	}
	if fake.closes != 1 {
		t.Fatalf("failure must close the connection, got %d closes", fake.closes)
	}

	// next read reconnects from scratch
	fake.inputErr = nil
	fake.inputResp = packRegisters(inputBlock())
	if _, err := r.ReadInputs(); err != nil {
		t.Fatalf("reconnect read err=%v", err)
	}
	if fake.connects != 2 {
		t.Fatalf("expected reconnect, got %d connects", fake.connects)
	}
}

func TestReadInputs_ShortReadClosesConnection(t *testing.T) {
	fake := &fakeTransport{inputResp: packRegisters(make([]uint16, 10))}
	r := newTestReader(fake, time.Now())

	_, err := r.ReadInputs()
	if !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
	if fake.closes != 1 {
		t.Fatalf("short read must close the connection, got %d closes", fake.closes)
	}
}

func TestReadInputs_ConnectFailure(t *testing.T) {
	fake := &fakeTransport{connectErr: errors.New("no such device")}
	r := newTestReader(fake, time.Now())

	if _, err := r.ReadInputs(); err == nil {
		t.Fatalf("expected error")
	}
	if fake.closes != 0 {
		t.Fatalf("nothing to close after failed connect, got %d closes", fake.closes)
	}
}

func TestReadIdentity_Success(t *testing.T) {
	regs := make([]uint16, RegisterBlockSize)
	regs[28], regs[29] = 0x0012, 0x3456
	fake := &fakeTransport{inputResp: packRegisters(regs)}

	r := newTestReader(fake, time.Now())

	id, err := r.ReadIdentity()
	if err != nil {
		t.Fatalf("ReadIdentity err=%v", err)
	}
	if id.ModelNo != "T1 Q2 P3 U4 M5 S6" {
		t.Fatalf("model: got %q", id.ModelNo)
	}
}
