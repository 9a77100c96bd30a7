package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intro_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intro_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ConversationsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intro_conversations_created_total",
			Help: "Conversations created, by initial bid status",
		},
		[]string{"status"},
	)

	BidsDisplacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intro_bids_displaced_total",
			Help: "WINNING bids demoted to LOSING",
		},
	)

	SettlementsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intro_settlements_total",
			Help: "Accepted conversations settled to the recipient",
		},
	)

	ReaperRecipientsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intro_reaper_recipients_total",
			Help: "Recipients processed by the reaper, by outcome",
		},
		[]string{"outcome"},
	)

	ReaperTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intro_reaper_transitions_total",
			Help: "Bid transitions applied by the reaper",
		},
		[]string{"to"},
	)

	ReaperCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "intro_reaper_cycle_duration_seconds",
			Help:    "Duration of one RunCycle call",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)

	TxRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intro_tx_retries_total",
			Help: "Transactions retried after a deadlock or serialization failure",
		},
		[]string{"operation"},
	)

	IntegrityFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integrity_failures_total",
			Help: "Records whose signature did not verify",
		},
		[]string{"record"},
	)

	BridgeTransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intro_bridge_transfers_total",
			Help: "On-chain bridge calls, by direction and status",
		},
		[]string{"direction", "status"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intro_notifications_total",
			Help: "Notifications handled, by kind and status",
		},
		[]string{"kind", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intro_notification_queue_length",
			Help: "Notifications waiting across all notifier shards",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordConversationCreated(status string) {
	ConversationsCreatedTotal.WithLabelValues(status).Inc()
}

func RecordBidsDisplaced(n int) {
	BidsDisplacedTotal.Add(float64(n))
}

func RecordSettlement() {
	SettlementsTotal.Inc()
}

// RecordReaperRecipient counts one recipient; outcome is "resolved" or "failed".
func RecordReaperRecipient(outcome string) {
	ReaperRecipientsTotal.WithLabelValues(outcome).Inc()
}

// RecordReaperTransitions counts n bids moved to status to.
func RecordReaperTransitions(to string, n int) {
	if n > 0 {
		ReaperTransitionsTotal.WithLabelValues(to).Add(float64(n))
	}
}

func RecordReaperCycle(seconds float64) {
	ReaperCycleDuration.Observe(seconds)
}

func RecordTxRetry(operation string) {
	TxRetriesTotal.WithLabelValues(operation).Inc()
}

// RecordIntegrityFailure counts a failed verification; record is the entity type.
func RecordIntegrityFailure(record string) {
	IntegrityFailuresTotal.WithLabelValues(record).Inc()
}

func RecordBridgeTransfer(direction, status string) {
	BridgeTransfersTotal.WithLabelValues(direction, status).Inc()
}

func RecordNotification(kind, status string) {
	NotificationsTotal.WithLabelValues(kind, status).Inc()
}
