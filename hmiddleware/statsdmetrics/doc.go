// Package statsdmetrics provides chi style middleware (a function that takes
// and returns an http.Handler) which reports request metrics to a statsd
// client.
//
// Metric names are derived from the service name and the request path:
//
//	<service>.<path segments>
//
// For example, a request to GET /api/v1/foo on service "mysvc" is reported
// as mysvc.api.v1.foo.
//
// Path segments keep their percent-encoding from the request target, so
// /über is reported as mysvc.%C3%BCber and /a%20b as mysvc.a%20b. Characters
// the statsd wire format reserves (":|@#," and whitespace) are replaced by
// "_" in the client, so /v1/things:batchGet is reported as
// mysvc.v1.things_batchGet.
//
// NewStatusCode increments a counter per request, tagged with:
//
//	method:<method>
//	status_code:<status code>
//
// NewTiming reports two timing samples per request, both tagged with the
// method and status code plus one of:
//
//	type:clock - wall clock time spent handling the request
//	type:cpu   - process CPU time (user+system) spent meanwhile
//
// Failures to derive a name or to emit a metric are logged and never affect
// the response. Panics in the wrapped handler propagate and nothing is
// emitted for that request.
package statsdmetrics
