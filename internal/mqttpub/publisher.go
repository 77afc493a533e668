// internal/mqttpub/publisher.go

// Package mqttpub republishes inverter telemetry on the local MQTT bus and
// announces the device to Home Assistant via retained discovery documents.
package mqttpub

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/BruceRobertson/growatt-mqtt/internal/inverter"
	"github.com/BruceRobertson/growatt-mqtt/internal/logger"
)

const publishTimeout = 5 * time.Second

// Config holds broker and topic settings.
type Config struct {
	Broker          string
	Port            int
	Username        string
	Password        string
	Topic           string
	DiscoveryEnable bool
	DiscoveryPrefix string
}

// Publisher is a persistent MQTT client for one inverter.
type Publisher struct {
	cfg Config
	cli mqtt.Client
	log *logger.Logger

	// identity published in discovery documents; set before Connect
	identity inverter.Identity
}

// New creates a publisher. Connect must be called before publishing.
func New(cfg Config, identity inverter.Identity, log *logger.Logger) *Publisher {
	p := &Publisher{cfg: cfg, identity: identity, log: log}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port)).
		SetClientID("growatt-mqtt").
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetWill(cfg.Topic+"/availability", "offline", 0, true)

	opts.OnConnect = func(cli mqtt.Client) {
		log.Infow("mqtt connected", "broker", cfg.Broker, "port", cfg.Port)
		if cfg.DiscoveryEnable {
			p.publishDiscovery(cli)
		}
		cli.Publish(cfg.Topic+"/availability", 0, true, "online")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warnw("mqtt connection lost, will auto-reconnect", "err", err)
	}

	p.cli = mqtt.NewClient(opts)
	return p
}

// Connect establishes the broker session.
func (p *Publisher) Connect() error {
	tok := p.cli.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqttpub: connect: %w", err)
	}
	return nil
}

// PublishReading publishes the flat topic map for one reading.
func (p *Publisher) PublishReading(r inverter.Reading) error {
	for suffix, value := range stateValues(r, p.identity) {
		tok := p.cli.Publish(p.cfg.Topic+"/"+suffix, 0, false, value)
		if !tok.WaitTimeout(publishTimeout) {
			return fmt.Errorf("mqttpub: publish %s timed out", suffix)
		}
		if err := tok.Error(); err != nil {
			return fmt.Errorf("mqttpub: publish %s: %w", suffix, err)
		}
	}
	return nil
}

// Close marks the device offline and disconnects cleanly.
func (p *Publisher) Close() {
	if !p.cli.IsConnected() {
		return
	}
	p.cli.Publish(p.cfg.Topic+"/availability", 0, true, "offline").WaitTimeout(publishTimeout)
	p.cli.Disconnect(250)
	p.log.Infow("mqtt disconnected")
}
