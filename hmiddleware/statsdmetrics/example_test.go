package statsdmetrics_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/heroku/hstatsd/hmiddleware/statsdmetrics"
	"github.com/heroku/hstatsd/statsd/statsdtest"
)

// This example shows the metrics reported for requests passing through both
// middlewares.
func Example() {
	// Any statsd.Incrementer and statsd.Timer will do, e.g. a *statsd.Client.
	client := statsdtest.NewRecorder(nil)

	status, err := statsdmetrics.NewStatusCode(client, statsdmetrics.WithService("mysvc"))
	if err != nil {
		fmt.Println(err)
		return
	}
	timing, err := statsdmetrics.NewTiming(client, statsdmetrics.WithService("mysvc"))
	if err != nil {
		fmt.Println(err)
		return
	}

	r := chi.NewRouter()
	r.Use(status, timing)
	r.Get("/api/v1/foo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/foo?verbose=1", nil))

	for _, c := range client.Increments() {
		fmt.Println("increment", c)
	}
	for _, c := range client.Timings() {
		fmt.Println("timing", c)
	}

	// Output:
	// increment mysvc.api.v1.foo[method:GET,status_code:200]
	// timing mysvc.api.v1.foo[method:GET,status_code:200,type:clock]
	// timing mysvc.api.v1.foo[method:GET,status_code:200,type:cpu]
}
