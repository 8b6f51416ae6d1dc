package statsdmetrics

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heroku/hstatsd/statsd"
)

// NewStatusCode returns an HTTP middleware which increments a counter named
// after the request path for every request, tagged with the request method
// and response status code.
//
// If client is nil, the process-wide default client is used, constructed
// from the WithClientConfig option on first use.
func NewStatusCode(client statsd.Incrementer, opts ...Option) (func(http.Handler) http.Handler, error) {
	o := newOptions(opts)

	if client == nil {
		c, err := o.defaultClient()
		if err != nil {
			return nil, errors.Wrap(err, "statsdmetrics: creating default client")
		}
		client = c
	} else if err := statsd.ValidateIncrementer(client); err != nil {
		return nil, err
	}

	o.logger.WithField("service", o.service).Debug("status code middleware ready")

	return newMiddleware(o, false, func(s sample) {
		tags := []string{
			"method:" + s.method,
			"status_code:" + strconv.Itoa(s.status),
		}
		if err := client.Increment(s.name, tags); err != nil {
			o.logger.WithError(err).WithFields(logrus.Fields{
				"metric": s.name,
				"status": s.status,
			}).Error("incrementing count metric")
		}
	}), nil
}
