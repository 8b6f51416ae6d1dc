// Package hstatsd is a collection of packages for reporting HTTP request
// metrics to statsd from Go services.
//
// The packages are:
//
//	metricname                 - derives dot separated metric names from request paths
//	statsd                     - client capabilities and a DogStatsD backed client
//	statsd/statsdtest          - a recording client for tests
//	hmiddleware/statsdmetrics  - status code and timing middleware
//	cmdutil/svclog             - service logger setup
package hstatsd
