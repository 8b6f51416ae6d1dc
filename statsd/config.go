package statsd

import (
	"net"
	"strconv"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned by New for unusable configuration.
var ErrInvalidConfig = errors.New("statsd: invalid config")

const (
	defaultHost          = "localhost"
	defaultPort          = 8125
	defaultFlushInterval = 10 * time.Second

	// 1500 byte ethernet MTU minus IP and UDP headers, with some headroom.
	defaultMaxPacketSize = 1432
)

// Config stores the env related config of a Client.
type Config struct {
	Host          string        `env:"STATSD_HOST,default=localhost"`
	Port          int           `env:"STATSD_PORT,default=8125"`
	Prefix        string        `env:"STATSD_PREFIX"`
	Tags          []string      `env:"STATSD_TAGS"`
	FlushInterval time.Duration `env:"STATSD_FLUSH_INTERVAL,default=10s"`
	MaxPacketSize int           `env:"STATSD_MAX_PACKET_SIZE,default=1432"`
}

// ConfigFromEnv decodes a Config from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding statsd config")
	}
	return cfg, nil
}

// Addr returns the host:port statsd address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// withDefaults fills in zero values, so a zero Config targets a local agent.
func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.MaxPacketSize == 0 {
		c.MaxPacketSize = defaultMaxPacketSize
	}
	return c
}

func (c Config) validate() error {
	switch {
	case c.Port < 0 || c.Port > 65535:
		return errors.Wrapf(ErrInvalidConfig, "port %d out of range", c.Port)
	case c.FlushInterval < 0:
		return errors.Wrapf(ErrInvalidConfig, "negative flush interval %v", c.FlushInterval)
	case c.MaxPacketSize < 0:
		return errors.Wrapf(ErrInvalidConfig, "negative max packet size %d", c.MaxPacketSize)
	}
	if c.Prefix != "" {
		if err := validateName(c.Prefix); err != nil {
			return errors.Wrap(ErrInvalidConfig, err.Error())
		}
	}
	if _, err := labelValues(c.Tags); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}
