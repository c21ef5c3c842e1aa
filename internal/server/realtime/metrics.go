package realtime

import "github.com/prometheus/client_golang/prometheus"

var (
	subscribersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "lifedash",
		Subsystem: "server_realtime",
		Name:      "subscribers",
		Help:      "Number of open realtime subscriptions.",
	})

	eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifedash",
		Subsystem: "server_realtime",
		Name:      "events_total",
		Help:      "Change events offered to subscribers by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(subscribersGauge, eventsTotal)
}
