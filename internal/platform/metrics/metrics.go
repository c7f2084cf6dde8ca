package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	SequencedStops = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "route_sequence_stops", Help: "Stops per sequencing call.", Buckets: []float64{1, 5, 10, 20, 40, 80, 160}},
	)
	TwoOptSwaps = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "route_sequence_two_opt_swaps", Help: "Accepted 2-opt swaps per sequencing call.", Buckets: []float64{0, 1, 5, 10, 50, 100, 1000, 10000}},
	)
	// SwapBudgetExhausted counts sequencing calls that hit the 2-opt swap cap.
	SwapBudgetExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "route_sequence_swap_budget_exhausted_total", Help: "Sequencing calls stopped by the 2-opt swap budget."},
	)
	SequenceCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_sequence_cache_lookups_total", Help: "Sequence cache lookups by result."},
		[]string{"result"},
	)
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_rate_limited_total", Help: "Requests rejected by the tenant rate limiter."},
		[]string{"path"},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(SequencedStops)
		Registry.MustRegister(TwoOptSwaps)
		Registry.MustRegister(SwapBudgetExhausted)
		Registry.MustRegister(SequenceCacheLookups)
		Registry.MustRegister(RateLimited)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// ObserveSequence records the outcome of one sequencing call.
func ObserveSequence(stops, swaps int, exhausted bool) {
	SequencedStops.Observe(float64(stops))
	TwoOptSwaps.Observe(float64(swaps))
	if exhausted {
		SwapBudgetExhausted.Inc()
	}
}

// ObserveRequest records a finished HTTP request.
func ObserveRequest(method, path string, status int, seconds float64) {
	code := strconv.Itoa(status)
	HTTPRequests.WithLabelValues(method, path, code).Inc()
	HTTPDuration.WithLabelValues(method, path, code).Observe(seconds)
}
