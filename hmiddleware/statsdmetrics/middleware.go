package statsdmetrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/heroku/hstatsd/metricname"
)

// sample is what was observed about a single request.
type sample struct {
	name   string
	method string
	status int

	// Only set by timed middleware.
	clock time.Duration
	cpu   time.Duration
}

// newMiddleware returns middleware which derives the metric name of each
// request, serves it with next and hands the resulting sample to emit. When
// timed is set, wall clock and process CPU time are measured from before
// the name is derived until next returns.
//
// emit is not called when the name can't be derived or next panics.
func newMiddleware(o *options, timed bool, emit func(sample)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				start    time.Time
				cpuStart time.Duration
			)
			if timed {
				start = time.Now()
				cpuStart = processCPUTime()
			}

			path := requestPath(r)
			name, err := metricname.Derive(o.service, path)
			if err != nil {
				o.logger.WithError(err).WithFields(logrus.Fields{
					"service": o.service,
					"path":    path,
				}).Error("deriving metric name, not recording metrics")
				next.ServeHTTP(w, r)
				return
			}

			ww, ok := w.(middleware.WrapResponseWriter)
			if !ok {
				ww = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			}

			next.ServeHTTP(ww, r)

			s := sample{
				name:   name,
				method: r.Method,
				status: ww.Status(),
			}
			if s.status == 0 {
				// Assume no Write or WriteHeader means OK.
				s.status = http.StatusOK
			}
			if timed {
				s.clock = nonNegative(time.Since(start))
				s.cpu = nonNegative(processCPUTime() - cpuStart)
			}

			emit(s)
		})
	}
}

// requestPath returns the raw request target as received by the server,
// which may be in absolute form. Requests constructed by clients have no
// RequestURI, so their URL is used instead.
func requestPath(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	if r.URL != nil {
		return r.URL.String()
	}
	return ""
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
