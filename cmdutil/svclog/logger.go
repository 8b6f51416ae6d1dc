// Package svclog provides logging facilities for services reporting to statsd.
package svclog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Config for logger.
type Config struct {
	AppName   string `env:"APP_NAME,default=statsd-example"`
	Deploy    string `env:"DEPLOY"`
	Dyno      string `env:"DYNO"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`
}

// NewLogger returns a new logger writing to stderr that includes app and,
// when set, deploy and dyno key/value pairs in each log line.
func NewLogger(cfg Config) logrus.FieldLogger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg Config, w io.Writer) logrus.FieldLogger {
	l := logrus.New()
	l.Out = w

	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		l.SetLevel(lvl)
	}
	if cfg.LogFormat == "json" {
		l.Formatter = &logrus.JSONFormatter{}
	}

	logger := l.WithField("app", cfg.AppName)
	if cfg.Deploy != "" {
		logger = logger.WithField("deploy", cfg.Deploy)
	}
	if cfg.Dyno != "" {
		logger = logger.WithField("dyno", cfg.Dyno)
	}
	return logger
}
