package realtime

import "github.com/prometheus/client_golang/prometheus"

var (
	eventCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifedash",
		Subsystem: "realtime",
		Name:      "events_total",
		Help:      "Number of realtime events grouped by outcome.",
	}, []string{"outcome"})

	reconnectCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lifedash",
		Subsystem: "realtime",
		Name:      "reconnects_total",
		Help:      "Number of times the realtime stream was resubscribed after an error.",
	})
)

func init() {
	prometheus.MustRegister(eventCounter, reconnectCounter)
}

func recordEvent(outcome string) {
	eventCounter.WithLabelValues(outcome).Inc()
}

func recordReconnect() {
	reconnectCounter.Inc()
}
