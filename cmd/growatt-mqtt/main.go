// cmd/growatt-mqtt/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BruceRobertson/growatt-mqtt/internal/config"
	"github.com/BruceRobertson/growatt-mqtt/internal/influx"
	"github.com/BruceRobertson/growatt-mqtt/internal/inverter"
	"github.com/BruceRobertson/growatt-mqtt/internal/logger"
	"github.com/BruceRobertson/growatt-mqtt/internal/monitor"
	"github.com/BruceRobertson/growatt-mqtt/internal/mqttpub"
	"github.com/BruceRobertson/growatt-mqtt/internal/pvoutput"
	"github.com/BruceRobertson/growatt-mqtt/internal/schedule"
)

const serialTimeout = 1 * time.Second

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: growatt-mqtt <config.yaml>")
		os.Exit(1)
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	config.Normalize(cfg)

	m := cfg.Monitor
	log := logger.New(m.LogLevel)

	// --------------------
	// Serial reader + device identity
	// --------------------

	reader := inverter.NewReader(inverter.Config{
		Port:    m.Serial.Port,
		SlaveID: m.Serial.SlaveID,
		Timeout: serialTimeout,
	})
	defer reader.Close()

	identity, err := reader.ReadIdentity()
	if err != nil {
		// Not fatal: telemetry still works, identity topics stay empty.
		log.Warnw("device identity read failed", "err", err)
	} else {
		log.Infow("inverter identified",
			"serial_no", identity.SerialNo,
			"model_no", identity.ModelNo,
			"firmware", identity.Firmware,
			"device_type_code", identity.DeviceTypeCode)
	}

	// --------------------
	// Collaborators
	// --------------------

	pvo := pvoutput.New(m.PVOutput.APIKey, m.PVOutput.SystemID, log)

	pub := mqttpub.New(mqttpub.Config{
		Broker:          m.MQTT.Broker,
		Port:            m.MQTT.Port,
		Username:        m.MQTT.Username,
		Password:        m.MQTT.Password,
		Topic:           m.MQTT.Topic,
		DiscoveryEnable: *m.MQTT.DiscoveryEnable,
		DiscoveryPrefix: m.MQTT.DiscoveryPrefix,
	}, identity, log)

	if err := pub.Connect(); err != nil {
		log.Fatalw("mqtt connect failed", "err", err)
	}
	defer pub.Close()

	var opts []monitor.Option
	if m.Influx != nil {
		sink, err := influx.New(influx.Config{
			URL:    m.Influx.URL,
			Org:    m.Influx.Org,
			Token:  m.Influx.Token,
			Bucket: m.Influx.Bucket,
		}, identity.SerialNo, log)
		if err != nil {
			log.Fatalw("influx connect failed", "err", err)
		}
		defer sink.Close()
		opts = append(opts, monitor.WithHistory(sink))
	}

	// --------------------
	// Run until interrupt
	// --------------------

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := monitor.New(monitor.Config{
		Window: schedule.Window{
			Start: m.Shift.StartHour,
			Stop:  m.Shift.StopHour,
		},
		PollInterval: time.Duration(m.Poll.IntervalSec) * time.Second,
	}, reader, pvo, pub, log, opts...)

	loop.Run(ctx)

	log.Infow("shutting down")
}
