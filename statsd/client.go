package statsd

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/go-kit/kit/metrics/dogstatsd"
	"github.com/go-kit/kit/util/conn"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Client buffers counters and timings in the DogStatsD format and sends them
// to a statsd agent over UDP. Observations are aggregated until Flush is
// called, either directly or by Run. Connection failures are retried by a
// go-kit conn.Manager with exponential backoff.
//
// A Client is safe for concurrent use.
type Client struct {
	cfg    Config
	logger logrus.FieldLogger
	d      *dogstatsd.Dogstatsd
	reg    *registry
	tags   []string // constant label values, in pairs

	mu     sync.RWMutex
	w      io.Writer
	closed bool
}

var (
	_ Incrementer = &Client{}
	_ Timer       = &Client{}
)

// New returns a Client for the agent at cfg.Addr(). Zero config values are
// replaced by their defaults. An unreachable agent is not an error; writes
// fail until the connection manager reconnects.
func New(cfg Config, logger logrus.FieldLogger) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger = logger.WithField("at", "statsd")
	m := conn.NewDefaultManager("udp", cfg.Addr(), kitLogger{logger: logger})
	return newClient(cfg, logger, m), nil
}

// newClient expects a validated config with defaults applied.
func newClient(cfg Config, logger logrus.FieldLogger, w io.Writer) *Client {
	d := dogstatsd.New(cfg.Prefix, kitLogger{logger: logger})
	tags, _ := labelValues(cfg.Tags)

	return &Client{
		cfg:    cfg,
		logger: logger,
		d:      d,
		reg:    newRegistry(d),
		tags:   tags,
		w:      w,
	}
}

// Increment adds 1 to the named counter.
// Reserved characters in name are replaced by "_".
func (c *Client) Increment(name string, tags []string) error {
	name, lvs, err := c.labelValues(name, tags)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	c.reg.getOrRegisterCounter(name).With(lvs...).Add(1)
	return nil
}

// Timing records d, in milliseconds, against the named timer.
func (c *Client) Timing(name string, d time.Duration, tags []string) error {
	name, lvs, err := c.labelValues(name, tags)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	c.reg.getOrRegisterTiming(name).With(lvs...).Observe(ms(d))
	return nil
}

func (c *Client) labelValues(name string, tags []string) (string, []string, error) {
	name, err := sanitizeName(name)
	if err != nil {
		return "", nil, err
	}
	lvs, err := labelValues(tags)
	if err != nil {
		return "", nil, err
	}
	return name, append(append(make([]string, 0, len(c.tags)+len(lvs)), c.tags...), lvs...), nil
}

// Flush sends all buffered observations. Lines are packed into packets of
// at most MaxPacketSize bytes; a line longer than that is sent on its own.
// Observations are dropped if a write fails.
func (c *Client) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	return c.flush()
}

func (c *Client) flush() error {
	var buf bytes.Buffer
	if _, err := c.d.WriteTo(&buf); err != nil {
		return errors.Wrap(err, "encoding metrics")
	}

	var packet []byte
	for _, line := range bytes.SplitAfter(buf.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		if len(packet) > 0 && len(packet)+len(line) > c.cfg.MaxPacketSize {
			if err := c.send(packet); err != nil {
				return err
			}
			packet = packet[:0]
		}
		packet = append(packet, line...)
	}
	if len(packet) > 0 {
		return c.send(packet)
	}
	return nil
}

func (c *Client) send(packet []byte) error {
	if _, err := c.w.Write(packet); err != nil {
		return errors.Wrap(err, "sending metrics")
	}
	return nil
}

// Run flushes every FlushInterval until ctx is done, then flushes once more
// and returns. Flush errors are logged, not returned.
func (c *Client) Run(ctx context.Context) error {
	t := time.NewTicker(c.cfg.FlushInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logFlush()
			return nil
		case <-t.C:
			c.logFlush()
		}
	}
}

func (c *Client) logFlush() {
	if err := c.Flush(); err != nil && errors.Cause(err) != ErrClosed {
		c.logger.WithError(err).Error("flushing metrics")
	}
}

// Stop flushes remaining observations. Emitting through a stopped client
// returns ErrClosed.
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if err := c.flush(); err != nil {
		c.logger.WithError(err).Error("flushing metrics on stop")
	}
	c.closed = true
}

func ms(d time.Duration) float64 {
	if d < 0 {
		d = 0
	}
	return float64(d) / float64(time.Millisecond)
}
