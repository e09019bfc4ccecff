package metrics

import (
	"strconv"
	"time"

	"mecanica_booking/internal/usecase/interfaces"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "booking_service"

// Collector is a prometheus.Collector that collects metrics about the
// booking workflow and the HTTP API.
type Collector struct {
	transitions         *prometheus.CounterVec
	schedulingConflicts prometheus.Counter
	lockTimeouts        prometheus.Counter
	requestDuration     *prometheus.HistogramVec
}

var _ interfaces.IWorkflowObserver = (*Collector)(nil)

// NewMetricsCollector returns a new Collector.
func NewMetricsCollector() *Collector {
	return &Collector{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "transitions_total",
				Help:      "The number of committed workflow transitions.",
			}, []string{"entity", "transition"},
		),
		schedulingConflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "scheduling_conflicts_total",
				Help:      "The number of writes refused because the technician was already booked that day.",
			},
		),
		lockTimeouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "lock_timeouts_total",
				Help:      "The number of times a slot could not be acquired in time.",
			},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "The time taken to serve an HTTP request.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			}, []string{"method", "route", "status"},
		),
	}
}

func (c *Collector) ObserveTransition(entity, transition string) {
	c.transitions.WithLabelValues(entity, transition).Inc()
}

func (c *Collector) ObserveSchedulingConflict() {
	c.schedulingConflicts.Inc()
}

func (c *Collector) ObserveLockTimeout() {
	c.lockTimeouts.Inc()
}

func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.transitions.Describe(ch)
	c.schedulingConflicts.Describe(ch)
	c.lockTimeouts.Describe(ch)
	c.requestDuration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.transitions.Collect(ch)
	c.schedulingConflicts.Collect(ch)
	c.lockTimeouts.Collect(ch)
	c.requestDuration.Collect(ch)
}
