// Package statsd defines the metrics client capabilities used by the
// statsdmetrics middlewares and provides a DogStatsD backed client.
//
// A client implements one or both capabilities:
//
//	Incrementer - counters, e.g. requests per status code
//	Timer       - timing samples, e.g. request durations
//
// Tags are "key:value" strings. Their order is preserved on the wire.
package statsd

import (
	"reflect"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidClient is returned when a client does not implement the
	// capability required by its caller.
	ErrInvalidClient = errors.New("statsd: client does not implement required capability")

	// ErrClosed is returned when emitting through a stopped client.
	ErrClosed = errors.New("statsd: client closed")

	// ErrInvalidName is returned for empty metric names and for prefixes
	// the wire format can't carry.
	ErrInvalidName = errors.New("statsd: invalid metric name")

	// ErrInvalidTag is returned for tags not of the form key:value.
	ErrInvalidTag = errors.New("statsd: invalid tag")
)

// Incrementer submits counter increments.
type Incrementer interface {
	Increment(name string, tags []string) error
}

// Timer submits timing samples.
type Timer interface {
	Timing(name string, d time.Duration, tags []string) error
}

// ValidateIncrementer returns ErrInvalidClient if c is nil or holds a nil
// pointer.
func ValidateIncrementer(c Incrementer) error {
	if isNil(c) {
		return errors.Wrap(ErrInvalidClient, "Increment")
	}
	return nil
}

// ValidateTimer returns ErrInvalidClient if c is nil or holds a nil pointer.
func ValidateTimer(c Timer) error {
	if isNil(c) {
		return errors.Wrap(ErrInvalidClient, "Timing")
	}
	return nil
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Interface, reflect.Chan, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// labelValues converts key:value tags into go-kit style label value pairs.
func labelValues(tags []string) ([]string, error) {
	lvs := make([]string, 0, 2*len(tags))
	for _, tag := range tags {
		i := strings.Index(tag, ":")
		if i <= 0 {
			return nil, errors.Wrapf(ErrInvalidTag, "%q", tag)
		}
		lvs = append(lvs, tag[:i], tag[i+1:])
	}
	return lvs, nil
}

const reservedChars = ":|@#, \t\r\n"

// nameReplacer maps every character the wire format reserves to "_".
var nameReplacer = func() *strings.Replacer {
	var oldnew []string
	for _, r := range reservedChars {
		oldnew = append(oldnew, string(r), "_")
	}
	return strings.NewReplacer(oldnew...)
}()

// sanitizeName replaces reserved characters in name, so a route such as
// /v1/things:batchGet is still recorded, as svc.v1.things_batchGet.
func sanitizeName(name string) (string, error) {
	if name == "" {
		return "", errors.Wrap(ErrInvalidName, "empty name")
	}
	return nameReplacer.Replace(name), nil
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, reservedChars) {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}
