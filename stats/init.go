// Package stats contains implementations of [events.Observer] which
// export detection metrics to Prometheus and StatsD.
package stats

const (
	// DefaultMetricPrefix is a prefix of all metrics.
	DefaultMetricPrefix = "dupclean"

	// DefaultStatsdTagFormat is a default format of StatsD tags.
	DefaultStatsdTagFormat = "influxdb"

	MetricCheckedMessages = "checked_messages"
	MetricDuplicates      = "duplicates"
	MetricSkipped         = "skipped_messages"
	MetricEvictions       = "evictions"
	MetricActivations     = "activations"
	MetricDeactivations   = "deactivations"
	MetricDroppedRecords  = "dropped_records"
	MetricDeleted         = "deleted_messages"
	MetricDeleteFailures  = "delete_failures"
	MetricCheckDuration   = "check_duration_seconds"
	MetricActiveChats     = "active_chats"
	MetricStoreEntries    = "store_entries"
	MetricLargestChat     = "largest_chat_store"

	TagContentType     = "content_type"
	TagVerdict         = "verdict"
	TagVerdictNew      = "new"
	TagVerdictDup      = "duplicate"
	TagOrigin          = "origin"
	TagOriginForwarded = "forwarded"
	TagOriginOriginal  = "original"
	TagSkipReason      = "reason"
	TagActivation      = "activation"
	TagFailureReason   = "reason"
)

func getVerdict(isDuplicate bool) string {
	if isDuplicate {
		return TagVerdictDup
	}

	return TagVerdictNew
}

func getOrigin(wasForwarded bool) string {
	if wasForwarded {
		return TagOriginForwarded
	}

	return TagOriginOriginal
}
