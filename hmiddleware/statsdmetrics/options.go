package statsdmetrics

import (
	"github.com/sirupsen/logrus"

	"github.com/heroku/hstatsd/statsd"
)

// DefaultService is the service name used when none is configured.
const DefaultService = "asgi"

type options struct {
	service      string
	tags         []string
	logger       logrus.FieldLogger
	clientConfig statsd.Config
}

// Option configures the middlewares.
type Option func(*options)

// WithService sets the service name every metric name starts with.
func WithService(service string) Option {
	return func(o *options) {
		o.service = service
	}
}

// WithTags sets tags on the middleware. They are reserved and currently not
// attached to emitted metrics; use statsd.Config.Tags for constant tags.
func WithTags(tags ...string) Option {
	return func(o *options) {
		o.tags = append([]string(nil), tags...)
	}
}

// WithLogger sets the logger failures are reported to. A nil logger selects
// logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithClientConfig sets the config used to construct the process-wide
// default client when no client is passed to the middleware. It is ignored
// once the default client exists.
func WithClientConfig(cfg statsd.Config) Option {
	return func(o *options) {
		o.clientConfig = cfg
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		service: DefaultService,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}
	o.logger = o.logger.WithField("component", "statsdmetrics")
	return o
}

func (o *options) defaultClient() (*statsd.Client, error) {
	o.logger.Debug("no statsd client, using the default client")
	return statsd.Default(o.clientConfig, o.logger)
}
