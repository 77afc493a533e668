// internal/monitor/loop.go

// Package monitor runs the poll loop: read the inverter while the shift
// window is open, upload on 5-minute slots, republish every reading.
package monitor

import (
	"context"
	"time"

	"github.com/BruceRobertson/growatt-mqtt/internal/inverter"
	"github.com/BruceRobertson/growatt-mqtt/internal/logger"
	"github.com/BruceRobertson/growatt-mqtt/internal/pvoutput"
	"github.com/BruceRobertson/growatt-mqtt/internal/schedule"
)

// ReadingSource produces live readings from the device.
type ReadingSource interface {
	ReadInputs() (inverter.Reading, error)
}

// Uploader delivers telemetry to the cloud reporting service.
type Uploader interface {
	SendStatus(s pvoutput.Status) error
	AddOutput(date time.Time, generatedWh int) error
}

// Publisher republishes readings on the local bus.
type Publisher interface {
	PublishReading(r inverter.Reading) error
}

// HistorySink mirrors readings into local storage. Optional.
type HistorySink interface {
	WriteReading(r inverter.Reading)
}

// TemperatureSource supplies an ambient temperature override. Optional.
type TemperatureSource interface {
	Temperature() (float64, bool)
}

// Config is the runtime config the loop needs.
type Config struct {
	Window       schedule.Window
	PollInterval time.Duration
}

// Loop is the single-threaded monitor state machine. It is either active
// (inside the shift window, polling) or inactive (sleeping until the window
// reopens); transitions happen only by re-evaluating the window after a
// sleep. It runs until the context is cancelled.
type Loop struct {
	cfg Config

	reader   ReadingSource
	uploader Uploader
	pub      Publisher
	history  HistorySink
	tempSrc  TemperatureSource
	log      *logger.Logger

	// last calendar minute an upload slot was consumed
	lastUploadMinute int

	now   func() time.Time
	pause func(ctx context.Context, d time.Duration) bool
}

// Option configures optional collaborators.
type Option func(*Loop)

// WithHistory attaches a local history sink.
func WithHistory(h HistorySink) Option {
	return func(l *Loop) { l.history = h }
}

// WithTemperatureSource attaches an ambient temperature source.
func WithTemperatureSource(t TemperatureSource) Option {
	return func(l *Loop) { l.tempSrc = t }
}

// New creates a loop over the given collaborators.
func New(cfg Config, reader ReadingSource, uploader Uploader, pub Publisher, log *logger.Logger, opts ...Option) *Loop {
	l := &Loop{
		cfg:              cfg,
		reader:           reader,
		uploader:         uploader,
		pub:              pub,
		log:              log,
		lastUploadMinute: -1,
		now:              time.Now,
		pause:            sleepCtx,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run drives the state machine until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	var lastReading *inverter.Reading

	for ctx.Err() == nil {
		active, snooze := l.cfg.Window.Evaluate(l.now())

		if !active {
			// Shift just ended: report the day's total once.
			if lastReading != nil {
				l.sendEndOfDay(*lastReading)
				lastReading = nil
			}

			l.log.Infow("outside shift window", "sleep", snooze)
			if !l.pause(ctx, snooze) {
				return
			}
			continue
		}

		reading, err := l.reader.ReadInputs()
		if err != nil {
			// No reading this cycle; same interval as the success path.
			l.log.Warnw("inverter read failed", "err", err)
			if !l.pause(ctx, l.cfg.PollInterval) {
				return
			}
			continue
		}
		lastReading = &reading

		l.maybeUpload(reading)

		if err := l.pub.PublishReading(reading); err != nil {
			l.log.Errorw("publish failed", "err", err)
		}
		if l.history != nil {
			l.history.WriteReading(reading)
		}

		if !l.pause(ctx, l.cfg.PollInterval) {
			return
		}
	}
}

// maybeUpload consumes at most one upload slot per 5-minute boundary.
// The slot is consumed even when the upload fails; the next boundary is the
// next opportunity.
func (l *Loop) maybeUpload(r inverter.Reading) {
	minute := l.now().Minute()
	if minute%5 != 0 || minute == l.lastUploadMinute {
		return
	}
	l.lastUploadMinute = minute

	if err := l.uploader.SendStatus(l.uploadStatus(r)); err != nil {
		l.log.Errorw("pvoutput upload failed", "err", err)
		return
	}
	l.log.Infow("pvoutput updated")
}

// uploadStatus maps a reading onto the service's status fields.
func (l *Loop) uploadStatus(r inverter.Reading) pvoutput.Status {
	energy := int(r.WhToday)
	life := int(r.WhTotal)

	s := pvoutput.Status{
		At:         r.At,
		EnergyGen:  &energy,
		PowerGen:   ptr(r.ACPower),
		VDC:        ptr(r.PV1Volts),
		VAC:        ptr(r.ACVolts),
		TempInv:    ptr(r.Temp),
		EnergyLife: &life,
		PowerVDC:   ptr(r.PVPower),
	}

	if l.tempSrc != nil {
		if t, ok := l.tempSrc.Temperature(); ok {
			s.Temp = &t
		}
	}

	return s
}

func (l *Loop) sendEndOfDay(r inverter.Reading) {
	if err := l.uploader.AddOutput(r.At, int(r.WhToday)); err != nil {
		l.log.Errorw("end-of-day output failed", "err", err)
		return
	}
	l.log.Infow("end-of-day output sent", "wh", int(r.WhToday))
}

func ptr(f float64) *float64 { return &f }

// sleepCtx sleeps for d unless ctx is cancelled first.
// Returns false when the sleep was interrupted.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
