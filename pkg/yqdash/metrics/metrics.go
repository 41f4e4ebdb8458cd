package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "yqdash"

var (
	once sync.Once

	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Endpoint accesses by outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "latency_seconds",
			Help:      "Latency of endpoint accesses",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ArgumentFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "argument_fallbacks_total",
			Help:      "Zero-argument retries after an argument mismatch",
		},
		[]string{"endpoint"},
	)

	MemoLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "memo_lookups_total",
			Help:      "Session memo lookups by result",
		},
		[]string{"result"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Sessions currently held by the server",
		},
	)
)

// Register adds every collector to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(UpstreamRequests, UpstreamLatency, ArgumentFallbacks, MemoLookups, ActiveSessions)
	})
}

// ObserveUpstream records one endpoint access started at begin.
func ObserveUpstream(endpoint string, begin time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(begin).Seconds())
}

func ObserveMemo(hit bool) {
	if hit {
		MemoLookups.WithLabelValues("hit").Inc()
		return
	}
	MemoLookups.WithLabelValues("miss").Inc()
}
