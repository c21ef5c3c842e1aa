package handlers

import "github.com/prometheus/client_golang/prometheus"

var (
	upsertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifedash",
		Subsystem: "server",
		Name:      "row_upserts_total",
		Help:      "Row upserts by outcome (applied, stale, error).",
	}, []string{"outcome"})

	fetchedRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lifedash",
		Subsystem: "server",
		Name:      "fetched_rows_total",
		Help:      "Rows returned by row queries.",
	})
)

func init() {
	prometheus.MustRegister(upsertsTotal, fetchedRowsTotal)
}

func recordUpsert(outcome string) {
	upsertsTotal.WithLabelValues(outcome).Inc()
}
