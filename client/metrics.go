package lxd

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes as reported by the requests_total metric.
const (
	outcomeSuccess    = "success"
	outcomeConnection = "connection_error"
	outcomeTimeout    = "timeout"
	outcomeProtocol   = "protocol_error"
)

type requestMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newRequestMetrics(reg prometheus.Registerer) (*requestMetrics, error) {
	m := &requestMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "multipass_lxd",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Number of requests sent to the LXD daemon, by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "multipass_lxd",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Time spent waiting for LXD daemon replies.",
			Buckets:   []float64{.005, .025, .1, .5, 1, 5, 30, 120, 600},
		}, []string{"method"}),
	}

	if reg == nil {
		return m, nil
	}

	var err error
	m.requests, err = register(reg, m.requests)
	if err != nil {
		return nil, err
	}

	m.duration, err = register(reg, m.duration)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// register adds c to reg, reusing an identical collector registered by an earlier client.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err != nil {
		are := prometheus.AlreadyRegisteredError{}
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if ok {
				return existing, nil
			}
		}

		return c, err
	}

	return c, nil
}

func (m *requestMetrics) observe(method string, err error, elapsed time.Duration) {
	outcome := outcomeSuccess
	switch {
	case err == nil:
	case IsConnectionError(err):
		outcome = outcomeConnection
	case IsTimeoutError(err):
		outcome = outcomeTimeout
	default:
		outcome = outcomeProtocol
	}

	m.requests.WithLabelValues(method, outcome).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
