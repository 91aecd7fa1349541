package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for booking flows.
type BookingMetrics struct {
	appointmentsTotal  *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	suggestLatency     *prometheus.HistogramVec
	suggestResults     *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		appointmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "appointments_total",
			Help:      "Appointments written, by resulting status and origin",
		}, []string{"status", "origin"}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Cancellation requests, by outcome",
		}, []string{"outcome"}),
		suggestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "suggest_latency_seconds",
			Help:      "Latency of slot suggestion requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		suggestResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "suggest_results_total",
			Help:      "Suggestion candidates returned, by source",
		}, []string{"source"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.appointmentsTotal, m.cancellationsTotal, m.suggestLatency, m.suggestResults)
	return m
}

func (m *BookingMetrics) ObserveAppointment(status, origin string) {
	if m == nil {
		return
	}
	m.appointmentsTotal.WithLabelValues(status, origin).Inc()
}

func (m *BookingMetrics) ObserveCancellation(outcome string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveSuggestLatency(source string, seconds float64) {
	if m == nil {
		return
	}
	m.suggestLatency.WithLabelValues(source).Observe(seconds)
}

func (m *BookingMetrics) ObserveSuggestResults(source string, count int) {
	if m == nil {
		return
	}
	m.suggestResults.WithLabelValues(source).Add(float64(count))
}
