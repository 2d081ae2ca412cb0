// Package env provides common configuration of the tools.
package env

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/robotalks/serialpacket/pkg/packet"
)

// Config provides common options for tools talking to a link.
type Config struct {
	// Link is the URL of the link, see link.Open.
	Link string
	// Capacity is the receive buffer capacity.
	Capacity int
	// MaxPayload limits the payload sent.
	MaxPayload int
	// PollInterval is the interval between polls.
	PollInterval time.Duration
	// StallTimeout resets the decoder when a frame stalls, 0 disables it.
	StallTimeout time.Duration

	// ID identifies the link on the bridge.
	ID string
	// MQTTURL specifies the MQTT broker, e.g. mqtt://host:port/topic-prefix
	MQTTURL string
	// WebsocketAddr is the listen address of the websocket endpoint.
	WebsocketAddr string
	// MetricsAddr is the listen address of prometheus metrics.
	MetricsAddr string
	// CapturePath records received bytes into the file.
	CapturePath string
}

var defaultConfig = Config{
	Capacity:     packet.DefaultCapacity,
	MaxPayload:   packet.MaxPayloadSize,
	PollInterval: packet.DefaultPollInterval,
	MQTTURL:      "mqtt://localhost:1883/serial/",
}

func init() {
	if val := os.Getenv("SERIALPKT_LINK"); val != "" {
		defaultConfig.Link = val
	}
	if val := os.Getenv("SERIALPKT_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
	if val := os.Getenv("SERIALPKT_ID"); val != "" {
		defaultConfig.ID = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Link, "link", defaultConfig.Link, "Link URL, e.g. serial:///dev/ttyUSB0?baud=115200 or tcp://host:port.")
	flag.IntVar(&defaultConfig.Capacity, "capacity", defaultConfig.Capacity, "Receive buffer capacity.")
	flag.IntVar(&defaultConfig.MaxPayload, "max-payload", defaultConfig.MaxPayload, "Maximum payload size to send.")
	flag.DurationVar(&defaultConfig.PollInterval, "poll-interval", defaultConfig.PollInterval, "Interval between polls.")
	flag.DurationVar(&defaultConfig.StallTimeout, "stall-timeout", defaultConfig.StallTimeout, "Reset a stalled partial frame after the duration, 0 to disable.")
}

// SetupBridgeFlags sets up command line flags for bridging.
func SetupBridgeFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Link ID, defaults to machine ID.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL, empty to disable.")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Websocket listen address, e.g. :8080.")
	flag.StringVar(&defaultConfig.MetricsAddr, "metrics", defaultConfig.MetricsAddr, "Prometheus metrics listen address, e.g. :9090.")
	flag.StringVar(&defaultConfig.CapturePath, "capture", defaultConfig.CapturePath, "Record received bytes into the file.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.Link == "" {
		return errors.New("link must be specified")
	}
	if c.Capacity <= 0 {
		return errors.Errorf("invalid capacity %d", c.Capacity)
	}
	if c.MaxPayload <= 0 {
		return errors.Errorf("invalid max payload %d", c.MaxPayload)
	}
	if c.StallTimeout < 0 {
		return errors.Errorf("invalid stall timeout %v", c.StallTimeout)
	}
	return nil
}

// LinkID returns ID or the machine ID if not set.
func (c *Config) LinkID() string {
	if c.ID != "" {
		return c.ID
	}
	return MachineID()
}

// NewEncoder creates an Encoder writing to w.
func (c *Config) NewEncoder(w io.Writer) *packet.Encoder {
	enc := packet.NewEncoder(w)
	enc.MaxPayload = c.MaxPayload
	return enc
}

// NewDecoder creates a Decoder using the config.
func (c *Config) NewDecoder() *packet.Decoder {
	return packet.NewDecoder(c.Capacity)
}

// NewPump creates a Pump over the decoder.
func (c *Config) NewPump(d *packet.Decoder, h packet.MessageHandler) *packet.Pump {
	pump := packet.NewPump(d, h)
	pump.Interval = c.PollInterval
	pump.StallTimeout = c.StallTimeout
	return pump
}
