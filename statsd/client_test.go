package statsd

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kit/kit/util/conn"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packetWriter records each Write as a separate packet.
type packetWriter struct {
	mu      sync.Mutex
	packets []string
	err     error
}

func (w *packetWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return 0, w.err
	}
	w.packets = append(w.packets, string(p))
	return len(p), nil
}

func (w *packetWriter) lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var lines []string
	for _, p := range w.packets {
		lines = append(lines, strings.Split(strings.TrimSuffix(p, "\n"), "\n")...)
	}
	return lines
}

func newTestClient(t *testing.T, cfg Config) (*Client, *packetWriter) {
	t.Helper()

	cfg = cfg.withDefaults()
	require.NoError(t, cfg.validate())

	logger, _ := test.NewNullLogger()
	w := &packetWriter{}
	return newClient(cfg, logger, w), w
}

func TestClientIncrement(t *testing.T) {
	c, w := newTestClient(t, Config{})

	require.NoError(t, c.Increment("svc.api", []string{"method:GET", "status_code:200"}))
	require.NoError(t, c.Increment("svc.api", []string{"method:GET", "status_code:200"}))
	require.NoError(t, c.Flush())

	lines := w.lines()
	require.Len(t, lines, 1)
	require.True(t, strings.HasPrefix(lines[0], "svc.api:2"), lines[0])
	require.True(t, strings.HasSuffix(lines[0], "|c|#method:GET,status_code:200"), lines[0])
}

func TestClientTiming(t *testing.T) {
	c, w := newTestClient(t, Config{})

	require.NoError(t, c.Timing("svc.api", 1500*time.Microsecond, []string{"type:clock"}))
	require.NoError(t, c.Flush())

	lines := w.lines()
	require.Len(t, lines, 1)
	require.True(t, strings.HasPrefix(lines[0], "svc.api:1.5"), lines[0])
	require.True(t, strings.HasSuffix(lines[0], "|ms|#type:clock"), lines[0])
}

func TestClientPrefixAndConstantTags(t *testing.T) {
	c, w := newTestClient(t, Config{Prefix: "app.", Tags: []string{"env:test"}})

	require.NoError(t, c.Increment("svc.api", []string{"method:GET"}))
	require.NoError(t, c.Flush())

	lines := w.lines()
	require.Len(t, lines, 1)
	require.True(t, strings.HasPrefix(lines[0], "app.svc.api:"), lines[0])
	require.True(t, strings.HasSuffix(lines[0], "|#env:test,method:GET"), lines[0])
}

func TestClientFlushResets(t *testing.T) {
	c, w := newTestClient(t, Config{})

	require.NoError(t, c.Increment("svc.api", nil))
	require.NoError(t, c.Flush())
	require.NoError(t, c.Flush())

	require.Len(t, w.packets, 1)
}

func TestClientPacketSize(t *testing.T) {
	c, w := newTestClient(t, Config{MaxPacketSize: 64})

	for _, name := range []string{"svc.aaaaaaaaaaaa", "svc.bbbbbbbbbbbb", "svc.cccccccccccc", "svc.dddddddddddd"} {
		require.NoError(t, c.Increment(name, []string{"method:GET"}))
	}
	require.NoError(t, c.Flush())

	require.True(t, len(w.packets) > 1, "want multiple packets, got %q", w.packets)
	for _, p := range w.packets {
		require.True(t, len(p) <= 64, "packet %q exceeds max size", p)
		require.True(t, strings.HasSuffix(p, "\n"), "packet %q splits a line", p)
	}
	require.Len(t, w.lines(), 4)
}

func TestClientInvalidInput(t *testing.T) {
	c, w := newTestClient(t, Config{})

	require.Equal(t, ErrInvalidName, errors.Cause(c.Increment("", nil)))

	for _, tag := range []string{"method", ":GET"} {
		err := c.Timing("svc.api", time.Second, []string{tag})
		require.Equal(t, ErrInvalidTag, errors.Cause(err), "tag %q", tag)
	}

	require.NoError(t, c.Flush())
	require.Empty(t, w.packets)
}

func TestClientReservedNameChars(t *testing.T) {
	c, w := newTestClient(t, Config{})

	for _, name := range []string{"svc.v1.things:batchGet", "svc.a|b", "svc.a@b", "svc#a", "svc.a,b", "svc a"} {
		require.NoError(t, c.Increment(name, []string{"method:GET"}), "name %q", name)
	}
	require.NoError(t, c.Flush())

	lines := w.lines()
	require.Len(t, lines, 3)
	for _, want := range []string{"svc.v1.things_batchGet:1", "svc.a_b:3", "svc_a:2"} {
		var found bool
		for _, l := range lines {
			found = found || strings.HasPrefix(l, want)
		}
		require.True(t, found, "want a line starting %q in %q", want, lines)
	}
}

func TestClientWriteError(t *testing.T) {
	c, w := newTestClient(t, Config{})
	w.err = errors.New("connection refused")

	require.NoError(t, c.Increment("svc.api", nil))
	require.Error(t, c.Flush())
}

func TestClientStop(t *testing.T) {
	c, w := newTestClient(t, Config{})

	require.NoError(t, c.Increment("svc.api", nil))
	c.Stop()
	c.Stop()

	require.Len(t, w.packets, 1)
	require.Equal(t, ErrClosed, c.Increment("svc.api", nil))
	require.Equal(t, ErrClosed, c.Timing("svc.api", time.Second, nil))
	require.Equal(t, ErrClosed, c.Flush())
}

func TestClientRunFlushesOnDone(t *testing.T) {
	c, w := newTestClient(t, Config{FlushInterval: time.Hour})
	require.NoError(t, c.Increment("svc.api", nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- c.Run(ctx) }()

	cancel()
	require.NoError(t, <-done)
	require.Len(t, w.lines(), 1)
}

func TestClientRunLogsFlushErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	w := &packetWriter{err: errors.New("connection refused")}
	c := newClient(Config{}.withDefaults(), logger, w)
	require.NoError(t, c.Increment("svc.api", nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.Run(ctx))

	require.NotNil(t, hook.LastEntry())
	require.Equal(t, "flushing metrics", hook.LastEntry().Message)
}

func TestClientConcurrentUse(t *testing.T) {
	c, w := newTestClient(t, Config{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Increment("svc.api", []string{"method:GET"}))
			assert.NoError(t, c.Timing("svc.api", time.Millisecond, []string{"type:clock"}))
		}()
	}
	wg.Wait()
	require.NoError(t, c.Flush())

	var buf bytes.Buffer
	for _, l := range w.lines() {
		buf.WriteString(l + "\n")
	}
	require.Contains(t, buf.String(), "svc.api:50")
	require.Equal(t, 50, strings.Count(buf.String(), "|ms|#type:clock"))
}

func TestNew(t *testing.T) {
	c, err := New(Config{Host: "127.0.0.1", Port: 8125}, logrusNull())
	require.NoError(t, err)
	defer c.Stop()

	require.NoError(t, c.Increment("svc.api", []string{"method:GET"}))
}

func TestNewSendsToAgent(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	port := pc.LocalAddr().(*net.UDPAddr).Port
	c, err := New(Config{Host: "127.0.0.1", Port: port}, logrusNull())
	require.NoError(t, err)
	defer c.Stop()

	require.NoError(t, c.Increment("svc.api", []string{"method:GET"}))
	require.NoError(t, c.Flush())

	buf := make([]byte, 1500)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(time.Second)))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	require.Equal(t, "svc.api:1.000000|c|#method:GET\n", string(buf[:n]))
}

func TestClientReconnects(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	// The first connection is closed before use, so the first flush fails
	// and the manager has to dial again.
	var dials int32
	dialer := func(network, address string) (net.Conn, error) {
		c, err := net.Dial(network, address)
		if err == nil && atomic.AddInt32(&dials, 1) == 1 {
			c.Close()
		}
		return c, err
	}
	now := func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}

	logger, hook := test.NewNullLogger()
	m := conn.NewManager(dialer, "udp", pc.LocalAddr().String(), now, kitLogger{logger: logger})
	c := newClient(Config{}.withDefaults(), logger, m)

	require.NoError(t, c.Increment("svc.lost", nil))
	require.Error(t, c.Flush())

	require.Eventually(t, func() bool {
		assert.NoError(t, c.Increment("svc.api", nil))
		return c.Flush() == nil
	}, time.Second, 10*time.Millisecond)

	buf := make([]byte, 1500)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(time.Second)))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(buf[:n]), "svc.api:"), string(buf[:n]))

	require.True(t, atomic.LoadInt32(&dials) >= 2)
	var logged bool
	for _, e := range hook.AllEntries() {
		logged = logged || (e.Level == logrus.ErrorLevel && e.Message == "statsd connection")
	}
	require.True(t, logged, "want the write failure logged")
}

func TestKitLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	l := kitLogger{logger: logger}

	require.NoError(t, l.Log("err", "connection refused", "addr"))
	require.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	require.Equal(t, "connection refused", hook.LastEntry().Data["err"])
	require.Equal(t, "(MISSING)", hook.LastEntry().Data["addr"])

	require.NoError(t, l.Log("msg", "dialed"))
	require.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}

func TestNewInvalidConfig(t *testing.T) {
	for _, cfg := range []Config{
		{Port: 70000},
		{FlushInterval: -time.Second},
		{MaxPacketSize: -1},
		{Prefix: "a:b"},
		{Tags: []string{"novalue"}},
	} {
		_, err := New(cfg, logrusNull())
		require.Equal(t, ErrInvalidConfig, errors.Cause(err), "config %+v", cfg)
	}
}
