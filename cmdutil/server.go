// Package cmdutil provides the actors the example command runs in an
// oklog/run.Group.
package cmdutil

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// A Server can be run synchronously and return an error.
//
// Servers are typically used with oklog/run.Group.
type Server interface {
	Run() error
	Stop(error)
}

// ServerFuncs implements the Server interface with provided functions.
type ServerFuncs struct {
	RunFunc  func() error
	StopFunc func(error)
}

// Run calls RunFunc and returns any errors.
func (sf ServerFuncs) Run() error {
	return sf.RunFunc()
}

// Stop calls StopFunc, if it's non-nil.
func (sf ServerFuncs) Stop(err error) {
	if sf.StopFunc != nil {
		sf.StopFunc(err)
	}
}

// NewContextServer returns a Server that runs fn with a context that is
// canceled when the Server is stopped, such as a statsd.Client's Run loop.
func NewContextServer(fn func(context.Context) error) Server {
	ctx, cancel := context.WithCancel(context.Background())

	return ServerFuncs{
		RunFunc: func() error {
			return fn(ctx)
		},
		StopFunc: func(error) {
			cancel()
		},
	}
}

// NewHTTPServer returns a Server that serves srv until stopped, then shuts
// it down, waiting up to grace for in-flight requests. Run returns nil
// after a shutdown.
func NewHTTPServer(srv *http.Server, grace time.Duration, logger logrus.FieldLogger) Server {
	return ServerFuncs{
		RunFunc: func() error {
			logger.WithField("addr", srv.Addr).Info("listening")
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		},
		StopFunc: func(error) {
			ctx, cancel := context.WithTimeout(context.Background(), grace)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.WithError(err).Warn("shutting down server")
			}
		},
	}
}
