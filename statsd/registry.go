package statsd

import (
	"sync"

	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/dogstatsd"
)

// registry holds references to dogstatsd metrics by name. It keeps
// returning the same metric given the same name and type, and is safe for
// concurrent use.
type registry struct {
	sync.Mutex
	d        *dogstatsd.Dogstatsd
	counters map[string]kitmetrics.Counter
	timings  map[string]*dogstatsd.Timing
}

func newRegistry(d *dogstatsd.Dogstatsd) *registry {
	return &registry{
		d:        d,
		counters: make(map[string]kitmetrics.Counter),
		timings:  make(map[string]*dogstatsd.Timing),
	}
}

// getOrRegisterCounter creates or finds the counter given a name.
func (r *registry) getOrRegisterCounter(name string) kitmetrics.Counter {
	r.Lock()
	defer r.Unlock()

	if r.counters[name] == nil {
		r.counters[name] = r.d.NewCounter(name, 1)
	}
	return r.counters[name]
}

// getOrRegisterTiming creates or finds the timing given a name.
func (r *registry) getOrRegisterTiming(name string) *dogstatsd.Timing {
	r.Lock()
	defer r.Unlock()

	if r.timings[name] == nil {
		r.timings[name] = r.d.NewTiming(name, 1)
	}
	return r.timings[name]
}
