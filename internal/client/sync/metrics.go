package sync

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iudanet/lifedash/internal/models"
)

var (
	pushCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifedash",
		Subsystem: "sync",
		Name:      "push_total",
		Help:      "Number of record pushes grouped by result.",
	}, []string{"result"})

	pullCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifedash",
		Subsystem: "sync",
		Name:      "pull_total",
		Help:      "Number of pulls grouped by result.",
	}, []string{"result"})

	mergedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lifedash",
		Subsystem: "sync",
		Name:      "merged_records_total",
		Help:      "Number of remote records that changed local state during pulls.",
	})

	pendingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "lifedash",
		Subsystem: "sync",
		Name:      "pending_keys",
		Help:      "Number of entity keys waiting to be pushed for the active identity.",
	})

	statusGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "lifedash",
		Subsystem: "sync",
		Name:      "status",
		Help:      "1 for the current sync status, 0 for the others.",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(pushCounter, pullCounter, mergedCounter, pendingGauge, statusGauge)
}

func recordPush(result PushResult) {
	pushCounter.WithLabelValues(result.String()).Inc()
}

func recordPull(result string, merged int) {
	pullCounter.WithLabelValues(result).Inc()
	if merged > 0 {
		mergedCounter.Add(float64(merged))
	}
}

func recordPending(n int) {
	pendingGauge.Set(float64(n))
}

func recordStatus(status models.SyncStatus) {
	for _, s := range []models.SyncStatus{
		models.SyncStatusSynced,
		models.SyncStatusSyncing,
		models.SyncStatusOffline,
		models.SyncStatusError,
	} {
		value := 0.0
		if s == status {
			value = 1
		}
		statusGauge.WithLabelValues(s.String()).Set(value)
	}
}
