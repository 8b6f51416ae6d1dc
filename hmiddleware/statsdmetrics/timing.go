package statsdmetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heroku/hstatsd/statsd"
)

// NewTiming returns an HTTP middleware which reports how long each request
// took as two timing samples named after the request path: wall clock time
// tagged type:clock and CPU time tagged type:cpu. Both are also tagged with
// the request method and response status code.
//
// CPU time is that of the whole process. When requests are served
// concurrently, the CPU sample of one request includes time spent on the
// others, so it is an upper bound rather than a per request figure.
//
// If client is nil, the process-wide default client is used, constructed
// from the WithClientConfig option on first use.
func NewTiming(client statsd.Timer, opts ...Option) (func(http.Handler) http.Handler, error) {
	o := newOptions(opts)

	if client == nil {
		c, err := o.defaultClient()
		if err != nil {
			return nil, errors.Wrap(err, "statsdmetrics: creating default client")
		}
		client = c
	} else if err := statsd.ValidateTimer(client); err != nil {
		return nil, err
	}

	o.logger.WithField("service", o.service).Debug("timing middleware ready")

	return newMiddleware(o, true, func(s sample) {
		base := []string{
			"method:" + s.method,
			"status_code:" + strconv.Itoa(s.status),
		}
		for _, t := range []struct {
			typ string
			d   time.Duration
		}{
			{"clock", s.clock},
			{"cpu", s.cpu},
		} {
			tags := append(append(make([]string, 0, len(base)+1), base...), "type:"+t.typ)
			if err := client.Timing(s.name, t.d, tags); err != nil {
				o.logger.WithError(err).WithFields(logrus.Fields{
					"metric": s.name,
					"type":   t.typ,
				}).Error("submitting timing metric")
			}
		}
	}), nil
}
