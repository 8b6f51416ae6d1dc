// Package statsdtest provides a recording statsd client for tests.
package statsdtest

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/heroku/hstatsd/statsd"
)

// Call is a single recorded emission.
type Call struct {
	Name  string
	Value time.Duration
	Tags  []string
}

func (c Call) String() string {
	return c.Name + "[" + strings.Join(c.Tags, ",") + "]"
}

// Recorder records Increment and Timing calls so they can later be checked.
type Recorder struct {
	t testing.TB

	sync.Mutex
	increments []Call
	timings    []Call
	err        error
}

var (
	_ statsd.Incrementer = &Recorder{}
	_ statsd.Timer       = &Recorder{}
)

// NewRecorder constructs a Recorder reporting check failures to t. t may be
// nil when the Check methods are not used, as outside of tests.
func NewRecorder(t testing.TB) *Recorder {
	return &Recorder{t: t}
}

// Fail makes every subsequent emission return err, without recording it.
// A nil err restores normal recording.
func (r *Recorder) Fail(err error) {
	r.Lock()
	defer r.Unlock()
	r.err = err
}

// Increment implements statsd.Incrementer.
func (r *Recorder) Increment(name string, tags []string) error {
	r.Lock()
	defer r.Unlock()

	if r.err != nil {
		return r.err
	}
	r.increments = append(r.increments, Call{Name: name, Value: 1, Tags: copyTags(tags)})
	return nil
}

// Timing implements statsd.Timer.
func (r *Recorder) Timing(name string, d time.Duration, tags []string) error {
	r.Lock()
	defer r.Unlock()

	if r.err != nil {
		return r.err
	}
	r.timings = append(r.timings, Call{Name: name, Value: d, Tags: copyTags(tags)})
	return nil
}

// Increments returns the recorded Increment calls in order.
func (r *Recorder) Increments() []Call {
	r.Lock()
	defer r.Unlock()
	return append([]Call(nil), r.increments...)
}

// Timings returns the recorded Timing calls in order.
func (r *Recorder) Timings() []Call {
	r.Lock()
	defer r.Unlock()
	return append([]Call(nil), r.timings...)
}

// CheckIncrementCount checks that n Increment calls were recorded.
func (r *Recorder) CheckIncrementCount(n int) {
	t := r.tb()
	t.Helper()

	if got := r.Increments(); len(got) != n {
		t.Fatalf("len(increments) = %d, want %d: %v", len(got), n, got)
	}
}

// CheckTimingCount checks that n Timing calls were recorded.
func (r *Recorder) CheckTimingCount(n int) {
	t := r.tb()
	t.Helper()

	if got := r.Timings(); len(got) != n {
		t.Fatalf("len(timings) = %d, want %d: %v", len(got), n, got)
	}
}

// CheckIncrement checks that an Increment call with exactly the name and
// tags provided was recorded.
func (r *Recorder) CheckIncrement(name string, tags ...string) {
	t := r.tb()
	t.Helper()

	calls := r.Increments()
	if find(calls, name, tags) < 0 {
		t.Fatalf("no increment %s out of recorded increments: %v", Call{Name: name, Tags: tags}, calls)
	}
}

// CheckTiming checks that a Timing call with exactly the name and tags
// provided was recorded, and returns its value.
func (r *Recorder) CheckTiming(name string, tags ...string) time.Duration {
	t := r.tb()
	t.Helper()

	calls := r.Timings()
	i := find(calls, name, tags)
	if i < 0 {
		t.Fatalf("no timing %s out of recorded timings: %v", Call{Name: name, Tags: tags}, calls)
	}
	return calls[i].Value
}

// CheckNoEmissions checks that nothing was recorded.
func (r *Recorder) CheckNoEmissions() {
	t := r.tb()
	t.Helper()

	if inc, tim := r.Increments(), r.Timings(); len(inc)+len(tim) > 0 {
		t.Fatalf("want no emissions, got increments %v and timings %v", inc, tim)
	}
}

func (r *Recorder) tb() testing.TB {
	if r.t == nil {
		panic("statsdtest: Check method called on a Recorder without a testing.TB")
	}
	return r.t
}

func find(calls []Call, name string, tags []string) int {
	for i, c := range calls {
		if c.Name == name && equal(c.Tags, tags) {
			return i
		}
	}
	return -1
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func copyTags(tags []string) []string {
	return append(make([]string, 0, len(tags)), tags...)
}
