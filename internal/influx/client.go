// internal/influx/client.go

// Package influx mirrors readings into an InfluxDB bucket when one is
// configured. It is a fire-and-forget sink; the monitor never reads back.
package influx

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/BruceRobertson/growatt-mqtt/internal/inverter"
	"github.com/BruceRobertson/growatt-mqtt/internal/logger"
)

// Config holds InfluxDB v2 connection settings.
type Config struct {
	URL    string
	Org    string
	Token  string
	Bucket string
}

// Client wraps the InfluxDB v2 async write API.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	serial   string
	log      *logger.Logger
}

// New connects and verifies the server is healthy.
func New(cfg Config, serial string, log *logger.Logger) (*Client, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	if _, err := client.Health(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("influx: health check: %w", err)
	}

	return &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		serial:   serial,
		log:      log,
	}, nil
}

// WriteReading queues one reading as a measurement point.
// Delivery is asynchronous; failures are logged by the write API.
func (c *Client) WriteReading(r inverter.Reading) {
	point := write.NewPoint(
		"inverter_reading",
		map[string]string{
			"serial_no": c.serial,
			"status":    r.StatusText(),
		},
		map[string]interface{}{
			"pv_power":        r.PVPower,
			"pv1_volts":       r.PV1Volts,
			"pv1_amps":        r.PV1Amps,
			"pv1_power":       r.PV1Power,
			"pv2_volts":       r.PV2Volts,
			"pv2_amps":        r.PV2Amps,
			"pv2_power":       r.PV2Power,
			"ac_power":        r.ACPower,
			"ac_volts":        r.ACVolts,
			"ac_amps":         r.ACAmps,
			"ac_frequency":    r.ACFrequency,
			"wh_today":        r.WhToday,
			"wh_total":        r.WhTotal,
			"temp":            r.Temp,
			"ipm_temp":        r.IPMTemp,
			"operation_hours": r.OperationHours,
		},
		r.At,
	)

	c.writeAPI.WritePoint(point)
}

// Close flushes pending points and releases the client.
func (c *Client) Close() {
	c.writeAPI.Flush()
	c.client.Close()
}
