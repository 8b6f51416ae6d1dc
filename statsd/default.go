package statsd

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultOnce   sync.Once
	defaultClient *Client
	defaultErr    error
)

// Default returns the process-wide default Client, constructing it from cfg
// on the first call. Later calls return the same client and error; their
// cfg and logger are ignored.
//
// The default client flushes every FlushInterval for the lifetime of the
// process and is never stopped. Applications that need to control its
// lifecycle should construct a Client with New and inject it instead.
func Default(cfg Config, logger logrus.FieldLogger) (*Client, error) {
	defaultOnce.Do(func() {
		defaultClient, defaultErr = New(cfg, logger)
		if defaultErr != nil {
			return
		}
		logger.WithField("addr", defaultClient.cfg.Addr()).Debug("started default statsd client")
		go defaultClient.Run(context.Background())
	})
	return defaultClient, defaultErr
}
