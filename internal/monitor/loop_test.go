// internal/monitor/loop_test.go
package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BruceRobertson/growatt-mqtt/internal/inverter"
	"github.com/BruceRobertson/growatt-mqtt/internal/logger"
	"github.com/BruceRobertson/growatt-mqtt/internal/pvoutput"
	"github.com/BruceRobertson/growatt-mqtt/internal/schedule"
)

// ---- fakes ----

type fakeReader struct {
	reading inverter.Reading
	err     error
	calls   int
}

func (f *fakeReader) ReadInputs() (inverter.Reading, error) {
	f.calls++
	return f.reading, f.err
}

type fakeUploader struct {
	statuses []pvoutput.Status
	outputs  []int
	err      error
}

func (f *fakeUploader) SendStatus(s pvoutput.Status) error {
	f.statuses = append(f.statuses, s)
	return f.err
}

func (f *fakeUploader) AddOutput(date time.Time, generatedWh int) error {
	f.outputs = append(f.outputs, generatedWh)
	return nil
}

type fakePublisher struct {
	published []inverter.Reading
}

func (f *fakePublisher) PublishReading(r inverter.Reading) error {
	f.published = append(f.published, r)
	return nil
}

type fakeSink struct {
	written int
}

func (f *fakeSink) WriteReading(r inverter.Reading) { f.written++ }

type fixedTemp struct{ v float64 }

func (f fixedTemp) Temperature() (float64, bool) { return f.v, true }

// testClock drives the loop deterministically: pauses advance the clock and
// the loop stops once the pause budget is spent.
type testClock struct {
	now    time.Time
	pauses []time.Duration
	budget int
}

func (c *testClock) wire(l *Loop) {
	l.now = func() time.Time { return c.now }
	l.pause = func(_ context.Context, d time.Duration) bool {
		c.pauses = append(c.pauses, d)
		c.now = c.now.Add(d)
		c.budget--
		return c.budget > 0
	}
}

func newTestLoop(reader ReadingSource, up Uploader, pub Publisher, opts ...Option) *Loop {
	cfg := Config{
		Window:       schedule.Window{Start: 5, Stop: 21},
		PollInterval: 10 * time.Second,
	}
	return New(cfg, reader, up, pub, logger.Nop(), opts...)
}

// ---- tests ----

func TestRun_UploadsOncePerSlot(t *testing.T) {
	reading := inverter.Reading{Status: 1, WhToday: 5200, ACPower: 1800, PVPower: 2000}
	reader := &fakeReader{reading: reading}
	up := &fakeUploader{}
	pub := &fakePublisher{}

	clock := &testClock{
		now:    time.Date(2026, 6, 15, 10, 5, 0, 0, time.Local),
		budget: 31, // 10:05:00 .. 10:10:00 at 10s per poll
	}

	l := newTestLoop(reader, up, pub)
	clock.wire(l)
	l.Run(context.Background())

	// one upload at 10:05, one at 10:10, nothing in between
	if len(up.statuses) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(up.statuses))
	}

	// every successful poll publishes
	if len(pub.published) != reader.calls {
		t.Fatalf("published %d of %d readings", len(pub.published), reader.calls)
	}
}

func TestRun_UploadFailureConsumesSlot(t *testing.T) {
	reader := &fakeReader{reading: inverter.Reading{Status: 1}}
	up := &fakeUploader{err: errors.New("gave up")}
	pub := &fakePublisher{}

	clock := &testClock{
		now:    time.Date(2026, 6, 15, 10, 5, 0, 0, time.Local),
		budget: 6, // stays within minute 5
	}

	l := newTestLoop(reader, up, pub)
	clock.wire(l)
	l.Run(context.Background())

	// the failed upload consumed the slot; no in-loop retry
	if len(up.statuses) != 1 {
		t.Fatalf("expected 1 upload attempt, got %d", len(up.statuses))
	}
	// loop keeps publishing regardless
	if len(pub.published) != reader.calls {
		t.Fatalf("published %d of %d readings", len(pub.published), reader.calls)
	}
}

func TestRun_ReadFailureSleepsPollInterval(t *testing.T) {
	reader := &fakeReader{err: errors.New("short register read")}
	up := &fakeUploader{}
	pub := &fakePublisher{}

	clock := &testClock{
		now:    time.Date(2026, 6, 15, 10, 5, 0, 0, time.Local),
		budget: 3,
	}

	l := newTestLoop(reader, up, pub)
	clock.wire(l)
	l.Run(context.Background())

	if len(up.statuses) != 0 || len(pub.published) != 0 {
		t.Fatalf("no reading may reach downstream on read failure")
	}
	for i, d := range clock.pauses {
		if d != 10*time.Second {
			t.Fatalf("pause %d: failure path must sleep the poll interval, got %v", i, d)
		}
	}
}

func TestRun_InactiveSleepsSchedulerDuration(t *testing.T) {
	reader := &fakeReader{}
	up := &fakeUploader{}
	pub := &fakePublisher{}

	clock := &testClock{
		now:    time.Date(2026, 6, 15, 22, 0, 0, 0, time.Local),
		budget: 1,
	}

	l := newTestLoop(reader, up, pub)
	clock.wire(l)
	l.Run(context.Background())

	if reader.calls != 0 {
		t.Fatalf("no polling outside the shift window")
	}
	// ((5 - 22 + 24) * 60) - 0 = 420 minutes
	if len(clock.pauses) != 1 || clock.pauses[0] != 420*time.Minute {
		t.Fatalf("expected one 420m sleep, got %v", clock.pauses)
	}
}

func TestRun_EndOfDayOutput(t *testing.T) {
	reader := &fakeReader{reading: inverter.Reading{Status: 1, WhToday: 5200}}
	up := &fakeUploader{}
	pub := &fakePublisher{}

	clock := &testClock{
		now:    time.Date(2026, 6, 15, 20, 59, 50, 0, time.Local),
		budget: 2, // one poll, then the window closes
	}

	l := newTestLoop(reader, up, pub)
	clock.wire(l)
	l.Run(context.Background())

	if len(up.outputs) != 1 {
		t.Fatalf("expected one end-of-day output, got %d", len(up.outputs))
	}
	if up.outputs[0] != 5200 {
		t.Fatalf("end-of-day wh: got %d want 5200", up.outputs[0])
	}
}

func TestRun_UploadFieldMapping(t *testing.T) {
	reading := inverter.Reading{
		At:       time.Date(2026, 6, 15, 10, 5, 0, 0, time.Local),
		Status:   1,
		WhToday:  5200.4,
		WhTotal:  6553600.9,
		ACPower:  1800,
		ACVolts:  230.5,
		PV1Volts: 220,
		PVPower:  2000,
		Temp:     45.1,
	}
	reader := &fakeReader{reading: reading}
	up := &fakeUploader{}
	pub := &fakePublisher{}
	sink := &fakeSink{}

	clock := &testClock{
		now:    time.Date(2026, 6, 15, 10, 5, 0, 0, time.Local),
		budget: 1,
	}

	l := newTestLoop(reader, up, pub,
		WithHistory(sink), WithTemperatureSource(fixedTemp{v: 21.5}))
	clock.wire(l)
	l.Run(context.Background())

	if len(up.statuses) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(up.statuses))
	}
	s := up.statuses[0]

	if s.EnergyGen == nil || *s.EnergyGen != 5200 {
		t.Fatalf("energy gen: got %v", s.EnergyGen)
	}
	if s.EnergyLife == nil || *s.EnergyLife != 6553600 {
		t.Fatalf("energy life: got %v", s.EnergyLife)
	}
	if s.PowerGen == nil || *s.PowerGen != 1800 {
		t.Fatalf("power gen: got %v", s.PowerGen)
	}
	if s.VDC == nil || *s.VDC != 220 {
		t.Fatalf("vdc: got %v", s.VDC)
	}
	if s.VAC == nil || *s.VAC != 230.5 {
		t.Fatalf("vac: got %v", s.VAC)
	}
	if s.TempInv == nil || *s.TempInv != 45.1 {
		t.Fatalf("temp inv: got %v", s.TempInv)
	}
	if s.PowerVDC == nil || *s.PowerVDC != 2000 {
		t.Fatalf("power vdc: got %v", s.PowerVDC)
	}
	if s.Temp == nil || *s.Temp != 21.5 {
		t.Fatalf("ambient temp override: got %v", s.Temp)
	}

	if sink.written != 1 {
		t.Fatalf("history sink: got %d writes", sink.written)
	}
}
