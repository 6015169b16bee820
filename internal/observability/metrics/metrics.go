package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flow.
type BookingMetrics struct {
	quotesComputed    *prometheus.CounterVec
	bookingsConfirmed prometheus.Counter
	paymentIntents    *prometheus.CounterVec
	intentLatency     prometheus.Histogram
	emailOutcomes     *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		quotesComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "freshnest",
			Subsystem: "booking",
			Name:      "quotes_computed_total",
			Help:      "Total quote computations",
		}, []string{"variant"}),
		bookingsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "freshnest",
			Subsystem: "booking",
			Name:      "confirmed_total",
			Help:      "Total bookings confirmed after payment",
		}),
		paymentIntents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "freshnest",
			Subsystem: "payments",
			Name:      "intents_total",
			Help:      "Total payment intent creations by outcome",
		}, []string{"status"}),
		intentLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "freshnest",
			Subsystem: "payments",
			Name:      "intent_latency_seconds",
			Help:      "Latency of payment intent creation",
			Buckets:   prometheus.DefBuckets,
		}),
		emailOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "freshnest",
			Subsystem: "notify",
			Name:      "confirmation_emails_total",
			Help:      "Total confirmation email attempts by outcome",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.quotesComputed, m.bookingsConfirmed, m.paymentIntents, m.intentLatency, m.emailOutcomes)
	return m
}

func (m *BookingMetrics) ObserveQuote(variant string) {
	if m == nil {
		return
	}
	m.quotesComputed.WithLabelValues(variant).Inc()
}

func (m *BookingMetrics) ObserveBookingConfirmed() {
	if m == nil {
		return
	}
	m.bookingsConfirmed.Inc()
}

func (m *BookingMetrics) ObservePaymentIntent(status string, seconds float64) {
	if m == nil {
		return
	}
	m.paymentIntents.WithLabelValues(status).Inc()
	m.intentLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveConfirmationEmail(status string) {
	if m == nil {
		return
	}
	m.emailOutcomes.WithLabelValues(status).Inc()
}
