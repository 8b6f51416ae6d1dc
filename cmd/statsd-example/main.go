// Command statsd-example serves a small API instrumented with the
// statsdmetrics middlewares, reporting to the statsd agent configured by
// the STATSD_* environment variables.
package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joeshaw/envdecode"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/heroku/hstatsd/cmdutil"
	"github.com/heroku/hstatsd/cmdutil/signals"
	"github.com/heroku/hstatsd/cmdutil/svclog"
	"github.com/heroku/hstatsd/hmiddleware/statsdmetrics"
	"github.com/heroku/hstatsd/statsd"
)

type config struct {
	Port    int    `env:"PORT,default=5000"`
	Service string `env:"STATSD_SERVICE,default=example"`

	Logger svclog.Config
	Statsd statsd.Config
}

func main() {
	var cfg config
	envdecode.MustStrictDecode(&cfg)

	logger := svclog.NewLogger(cfg.Logger)

	client, err := statsd.New(cfg.Statsd, logger)
	if err != nil {
		logger.WithError(err).Fatal("creating statsd client")
	}
	defer client.Stop()

	handler, err := newHandler(client, cfg.Service, logger)
	if err != nil {
		logger.WithError(err).Fatal("creating handler")
	}

	if err := serve(cfg.Port, handler, client, logger); err != nil {
		logger.WithError(err).Error("exiting")
	}
}

func newHandler(client *statsd.Client, service string, logger logrus.FieldLogger) (http.Handler, error) {
	opts := []statsdmetrics.Option{
		statsdmetrics.WithService(service),
		statsdmetrics.WithLogger(logger),
	}

	status, err := statsdmetrics.NewStatusCode(client, opts...)
	if err != nil {
		return nil, err
	}
	timing, err := statsdmetrics.NewTiming(client, opts...)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(status, timing)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/api/v1/hello/{name}", func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.WriteString(w, fmt.Sprintf("Hello %s!\n", chi.URLParam(r, "name"))); err != nil {
			logger.WithError(err).Warn("writing response")
		}
	})
	r.Get("/api/v1/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(250 * time.Millisecond):
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
		}
	})

	return r, nil
}

// serve runs the HTTP server and the client's flush loop until either fails
// or the process receives SIGINT or SIGTERM.
func serve(port int, h http.Handler, client *statsd.Client, logger logrus.FieldLogger) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g run.Group
	for _, s := range []cmdutil.Server{
		cmdutil.NewHTTPServer(srv, 5*time.Second, logger),
		cmdutil.NewContextServer(client.Run),
		signals.NewServer(logger, syscall.SIGINT, syscall.SIGTERM),
	} {
		g.Add(s.Run, s.Stop)
	}
	return g.Run()
}
