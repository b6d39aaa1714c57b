package duplib

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/google/uuid"
	boom "github.com/tylertreat/BoomFilters"
)

// DistinctEstimateErrorRate is a standard error of the distinct content
// estimate.
const DistinctEstimateErrorRate = 0.01

// ContentTypeCounters is a number of checked messages per content type.
type ContentTypeCounters map[string]uint64

// ChatStatsView is a read-only copy of counters of a single chat.
type ChatStatsView struct {
	ChatID              int64               `json:"chat_id"`
	ActivationReason    string              `json:"activation_reason"`
	ActivatedAt         time.Time           `json:"activated_at"`
	MessagesProcessed   uint64              `json:"messages_processed"`
	DuplicatesFound     uint64              `json:"duplicates_found"`
	ForwardedDuplicates uint64              `json:"forwarded_duplicates"`
	OriginalDuplicates  uint64              `json:"original_duplicates"`
	Skipped             uint64              `json:"skipped"`
	Evictions           uint64              `json:"evictions"`
	Deleted             uint64              `json:"deleted"`
	ByContentType       ContentTypeCounters `json:"by_content_type"`
	DuplicatesByType    ContentTypeCounters `json:"duplicates_by_content_type"`
}

// StatsView is a read-only copy of global counters. It is safe to
// serialize.
type StatsView struct {
	InstanceID          string              `json:"instance_id"`
	StartTime           time.Time           `json:"start_time"`
	Uptime              time.Duration       `json:"uptime"`
	MessagesProcessed   uint64              `json:"messages_processed"`
	DuplicatesFound     uint64              `json:"duplicates_found"`
	ForwardedDuplicates uint64              `json:"forwarded_duplicates"`
	OriginalDuplicates  uint64              `json:"original_duplicates"`
	ByContentType       ContentTypeCounters `json:"by_content_type"`
	DuplicatesByType    ContentTypeCounters `json:"duplicates_by_content_type"`
	SkippedUnsupported  uint64              `json:"skipped_unsupported"`
	SkippedRedelivery   uint64              `json:"skipped_redelivery"`
	Evictions           uint64              `json:"evictions"`
	MessagesDeleted     uint64              `json:"messages_deleted"`
	DeleteFailures      uint64              `json:"delete_failures"`
	DistinctEstimate    uint64              `json:"distinct_content_estimate"`
	AvgCheckDuration    time.Duration       `json:"avg_check_duration"`
	ActiveChats         int64               `json:"active_chats"`
	AutoActivatedChats  int64               `json:"auto_activated_chats"`
	AutoActivations     uint64              `json:"auto_activations"`
	Memory              *MemoryStats        `json:"memory,omitempty"`
}

// DuplicateRate returns a share of duplicates among processed messages
// in percents.
func (s StatsView) DuplicateRate() float64 {
	if s.MessagesProcessed == 0 {
		return 0
	}

	return float64(s.DuplicatesFound) / float64(s.MessagesProcessed) * 100 //nolint: gomnd
}

type typeCounters [contentTypeCount]atomic.Uint64

func (t *typeCounters) view() ContentTypeCounters {
	rv := ContentTypeCounters{}

	for _, ct := range ContentTypes() {
		if value := t[ct].Load(); value > 0 {
			rv[ct.String()] = value
		}
	}

	return rv
}

type chatStats struct {
	mu sync.Mutex

	reason              ActivationReason
	activatedAt         time.Time
	messagesProcessed   uint64
	duplicatesFound     uint64
	forwardedDuplicates uint64
	originalDuplicates  uint64
	skipped             uint64
	evictions           uint64
	deleted             uint64
	byContentType       [contentTypeCount]uint64
	duplicatesByType    [contentTypeCount]uint64
}

// StatsAggregator keeps running counters of detection outcomes.
//
// Global counters are atomics and accumulate for the whole lifetime of the
// aggregator. Per-chat counters are kept under a short per-chat mutex and
// exist only between activation and deactivation of a chat: outcomes of
// chats without an entry (a check which finished after deactivation)
// update global counters only. There is no lock shared between
// chats on a hot path: distinct content estimate has its own mutex but is
// updated only for checked messages.
type StatsAggregator struct {
	instanceID string
	startTime  time.Time
	chats      sync.Map // int64 -> *chatStats

	messagesProcessed   atomic.Uint64
	duplicatesFound     atomic.Uint64
	forwardedDuplicates atomic.Uint64
	originalDuplicates  atomic.Uint64
	byContentType       typeCounters
	duplicatesByType    typeCounters
	skippedUnsupported  atomic.Uint64
	skippedRedelivery   atomic.Uint64
	evictions           atomic.Uint64
	messagesDeleted     atomic.Uint64
	deleteFailures      atomic.Uint64
	activeChats         atomic.Int64
	autoActivatedChats  atomic.Int64
	autoActivations     atomic.Uint64
	checkDurationTotal  atomic.Int64 // nanoseconds
	checkDurationCount  atomic.Int64

	distinctMutex sync.Mutex
	distinct      *boom.HyperLogLog
}

// RecordOutcome accounts a checked message.
func (s *StatsAggregator) RecordOutcome(chatID int64, contentType ContentType,
	wasForwarded, isDuplicate bool,
) {
	if !contentType.Valid() {
		contentType = ContentUnknown
	}

	s.messagesProcessed.Add(1)
	s.byContentType[contentType].Add(1)

	if isDuplicate {
		s.duplicatesFound.Add(1)
		s.duplicatesByType[contentType].Add(1)

		if wasForwarded {
			s.forwardedDuplicates.Add(1)
		} else {
			s.originalDuplicates.Add(1)
		}
	}

	chat, ok := s.getChat(chatID)
	if !ok {
		return
	}

	chat.mu.Lock()
	defer chat.mu.Unlock()

	chat.messagesProcessed++
	chat.byContentType[contentType]++

	if isDuplicate {
		chat.duplicatesFound++
		chat.duplicatesByType[contentType]++

		if wasForwarded {
			chat.forwardedDuplicates++
		} else {
			chat.originalDuplicates++
		}
	}
}

// RecordSkip accounts a message of an active chat which was not checked.
func (s *StatsAggregator) RecordSkip(chatID int64, reason SkipReason) {
	switch reason {
	case SkipUnsupported:
		s.skippedUnsupported.Add(1)
	case SkipRedelivery:
		s.skippedRedelivery.Add(1)
	case SkipNone:
		return
	}

	if chat, ok := s.getChat(chatID); ok {
		chat.mu.Lock()
		chat.skipped++
		chat.mu.Unlock()
	}
}

// RecordEviction accounts records pushed out of a full store.
func (s *StatsAggregator) RecordEviction(chatID int64, count int) {
	if count <= 0 {
		return
	}

	s.evictions.Add(uint64(count))

	if chat, ok := s.getChat(chatID); ok {
		chat.mu.Lock()
		chat.evictions += uint64(count)
		chat.mu.Unlock()
	}
}

// RecordDeletion accounts an attempt of a transport to delete a duplicate.
func (s *StatsAggregator) RecordDeletion(chatID int64, ok bool) {
	if !ok {
		s.deleteFailures.Add(1)

		return
	}

	s.messagesDeleted.Add(1)

	if chat, found := s.getChat(chatID); found {
		chat.mu.Lock()
		chat.deleted++
		chat.mu.Unlock()
	}
}

// ObserveCheckDuration accounts how long a single check took.
func (s *StatsAggregator) ObserveCheckDuration(duration time.Duration) {
	s.checkDurationTotal.Add(int64(duration))
	s.checkDurationCount.Add(1)
}

// ObserveFingerprint feeds a distinct content estimate.
func (s *StatsAggregator) ObserveFingerprint(fp Fingerprint) {
	s.distinctMutex.Lock()
	s.distinct.Add(fp[:])
	s.distinctMutex.Unlock()
}

// RecordActivation implements ActivationRecorder.
func (s *StatsAggregator) RecordActivation(chatID int64, reason ActivationReason) {
	chat := &chatStats{
		reason:      reason,
		activatedAt: time.Now(),
	}

	if previous, loaded := s.chats.Swap(chatID, chat); loaded {
		s.forgetChat(previous.(*chatStats)) //nolint: forcetypeassert
	}

	s.activeChats.Add(1)

	if reason == ActivationAuto {
		s.autoActivatedChats.Add(1)
		s.autoActivations.Add(1)
	}
}

// RecordDeactivation implements ActivationRecorder. It resets per-chat
// counters, global totals are kept.
func (s *StatsAggregator) RecordDeactivation(chatID int64) {
	if previous, loaded := s.chats.LoadAndDelete(chatID); loaded {
		s.forgetChat(previous.(*chatStats)) //nolint: forcetypeassert
	}
}

// Snapshot returns a copy of global counters.
func (s *StatsAggregator) Snapshot() StatsView {
	s.distinctMutex.Lock()
	distinct := s.distinct.Count()
	s.distinctMutex.Unlock()

	var avgCheckDuration time.Duration
	if count := s.checkDurationCount.Load(); count > 0 {
		avgCheckDuration = time.Duration(s.checkDurationTotal.Load() / count)
	}

	return StatsView{
		InstanceID:          s.instanceID,
		StartTime:           s.startTime,
		Uptime:              time.Since(s.startTime),
		MessagesProcessed:   s.messagesProcessed.Load(),
		DuplicatesFound:     s.duplicatesFound.Load(),
		ForwardedDuplicates: s.forwardedDuplicates.Load(),
		OriginalDuplicates:  s.originalDuplicates.Load(),
		ByContentType:       s.byContentType.view(),
		DuplicatesByType:    s.duplicatesByType.view(),
		SkippedUnsupported:  s.skippedUnsupported.Load(),
		SkippedRedelivery:   s.skippedRedelivery.Load(),
		Evictions:           s.evictions.Load(),
		MessagesDeleted:     s.messagesDeleted.Load(),
		DeleteFailures:      s.deleteFailures.Load(),
		DistinctEstimate:    distinct,
		AvgCheckDuration:    avgCheckDuration,
		ActiveChats:         s.activeChats.Load(),
		AutoActivatedChats:  s.autoActivatedChats.Load(),
		AutoActivations:     s.autoActivations.Load(),
	}
}

// ChatSnapshot returns a copy of counters of a single chat. It returns
// false if there is nothing known about this chat.
func (s *StatsAggregator) ChatSnapshot(chatID int64) (ChatStatsView, bool) {
	value, ok := s.chats.Load(chatID)
	if !ok {
		return ChatStatsView{}, false
	}

	chat := value.(*chatStats) //nolint: forcetypeassert

	chat.mu.Lock()
	defer chat.mu.Unlock()

	rv := ChatStatsView{
		ChatID:              chatID,
		ActivationReason:    chat.reason.String(),
		ActivatedAt:         chat.activatedAt,
		MessagesProcessed:   chat.messagesProcessed,
		DuplicatesFound:     chat.duplicatesFound,
		ForwardedDuplicates: chat.forwardedDuplicates,
		OriginalDuplicates:  chat.originalDuplicates,
		Skipped:             chat.skipped,
		Evictions:           chat.evictions,
		Deleted:             chat.deleted,
		ByContentType:       ContentTypeCounters{},
		DuplicatesByType:    ContentTypeCounters{},
	}

	for _, ct := range ContentTypes() {
		if value := chat.byContentType[ct]; value > 0 {
			rv.ByContentType[ct.String()] = value
		}

		if value := chat.duplicatesByType[ct]; value > 0 {
			rv.DuplicatesByType[ct.String()] = value
		}
	}

	return rv, true
}

func (s *StatsAggregator) getChat(chatID int64) (*chatStats, bool) {
	value, ok := s.chats.Load(chatID)
	if !ok {
		return nil, false
	}

	return value.(*chatStats), true //nolint: forcetypeassert
}

func (s *StatsAggregator) forgetChat(chat *chatStats) {
	chat.mu.Lock()
	reason := chat.reason
	chat.mu.Unlock()

	s.activeChats.Add(-1)

	if reason == ActivationAuto {
		s.autoActivatedChats.Add(-1)
	}
}

// NewStatsAggregator creates a new aggregator with all counters set to
// zero. Start time is now.
func NewStatsAggregator() *StatsAggregator {
	distinct, err := boom.NewDefaultHyperLogLog(DistinctEstimateErrorRate)
	if err != nil {
		panic(err)
	}

	distinct.SetHash(xxhash.New32())

	return &StatsAggregator{
		instanceID: uuid.NewString(),
		startTime:  time.Now(),
		distinct:   distinct,
	}
}
