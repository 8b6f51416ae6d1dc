// Package metricname turns request paths into dot separated metric names.
//
// A request for https://example.org/api/v1/endpoint made against a service
// named "mysvc" yields the metric name:
//
//	mysvc.api.v1.endpoint
package metricname

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Delimiter separates the hierarchical segments of a metric name.
const Delimiter = "."

// ErrInvalidPath is returned when a path cannot be parsed as a URL.
var ErrInvalidPath = errors.New("metricname: invalid path")

// Derive returns service followed by the path component of path with every
// "/" replaced by Delimiter. Scheme, host, query and fragment are ignored.
//
// The path component is used in its escaped form, so an encoded slash (%2F)
// does not introduce a new segment and non-ASCII segments stay
// percent-encoded: "/über" yields service + ".%C3%BCber".
func Derive(service, path string) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidPath, "%v", err)
	}

	return service + strings.Replace(u.EscapedPath(), "/", Delimiter, -1), nil
}
