package duplib

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type chatSlot struct {
	mu     sync.Mutex
	store  *ChatStore
	reason ActivationReason
}

// ChatHandle gives a temporary exclusive access to a store of a single
// chat. Handles are cheap and must not be kept across checks.
type ChatHandle struct {
	chatID int64
	slot   *chatSlot
}

// ChatID returns an id of the chat this handle belongs to.
func (h ChatHandle) ChatID() int64 {
	return h.chatID
}

// With runs a callback holding a chat lock. All lookup+insert+evict
// sequences of a chat are serialized here.
func (h ChatHandle) With(callback func(store *ChatStore) error) error {
	h.slot.mu.Lock()
	defer h.slot.mu.Unlock()

	return callback(h.slot.store)
}

// MemoryStats is a point-in-time summary of all chat stores.
type MemoryStats struct {
	ActiveChats  int `json:"active_chats"`
	TotalEntries int `json:"total_entries"`
	LargestChat  int `json:"largest_chat_size"`
	PerChatLimit int `json:"per_chat_limit"`
}

// StoreRegistry owns a ChatStore per active chat.
//
// A chat is active if and only if it has a store. The map itself is
// guarded by RWMutex, each store has its own mutex so checks for different
// chats never contend. Deactivation only detaches a slot from the map: a
// check which has already got a handle finishes against the detached store
// and then the store is garbage collected.
type StoreRegistry struct {
	mu    sync.RWMutex
	slots map[int64]*chatSlot

	capacity        int
	retention       time.Duration
	autoActivations atomic.Uint64
	recorder        ActivationRecorder
	eventStream     EventStream
	logger          Logger
}

// Activate enables detection in a chat. It is idempotent: returns false if
// chat was already active, then nothing is changed.
func (r *StoreRegistry) Activate(chatID int64, reason ActivationReason) bool {
	// Fast path: already active chats only need a read lock.
	r.mu.RLock()
	_, exists := r.slots[chatID]
	r.mu.RUnlock()

	if exists {
		return false
	}

	r.mu.Lock()
	// Double-check after escalation: somebody could activate it meanwhile.
	if _, exists = r.slots[chatID]; exists {
		r.mu.Unlock()

		return false
	}

	r.slots[chatID] = &chatSlot{
		store:  NewChatStore(r.capacity, r.retention),
		reason: reason,
	}

	if reason == ActivationAuto {
		r.autoActivations.Add(1)
	}

	// Recorder is updated under the same lock, so its view of active chats
	// never disagrees with the map.
	r.recorder.RecordActivation(chatID, reason)
	r.mu.Unlock()

	r.eventStream.Send(context.Background(), NewEventActivated(chatID, reason))
	r.logger.BindInt64("chat_id", chatID).BindStr("reason", reason.String()).Info("chat has been activated")

	return true
}

// Deactivate disables detection in a chat and drops all its records. It is
// idempotent: returns false if chat was not active.
func (r *StoreRegistry) Deactivate(chatID int64) bool {
	r.mu.Lock()
	slot, exists := r.slots[chatID]

	if exists {
		delete(r.slots, chatID)
		r.recorder.RecordDeactivation(chatID)
	}
	r.mu.Unlock()

	if !exists {
		return false
	}

	slot.mu.Lock()
	dropped := slot.store.Size()
	slot.mu.Unlock()

	r.eventStream.Send(context.Background(), NewEventDeactivated(chatID, dropped))
	r.logger.BindInt64("chat_id", chatID).BindInt("dropped", dropped).Info("chat has been deactivated")

	return true
}

// IsActive returns true if detection is enabled in a chat.
func (r *StoreRegistry) IsActive(chatID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.slots[chatID]

	return ok
}

// GetOrCreate returns a handle to a store of an active chat. Stores are
// created on activation, so for inactive chats this returns
// ErrChatNotActive.
func (r *StoreRegistry) GetOrCreate(chatID int64) (ChatHandle, error) {
	r.mu.RLock()
	slot, ok := r.slots[chatID]
	r.mu.RUnlock()

	if !ok {
		return ChatHandle{}, fmt.Errorf("chat %d: %w", chatID, ErrChatNotActive)
	}

	return ChatHandle{chatID: chatID, slot: slot}, nil
}

// ActiveChats returns sorted ids of all active chats.
func (r *StoreRegistry) ActiveChats() []int64 {
	r.mu.RLock()
	rv := make([]int64, 0, len(r.slots))

	for chatID := range r.slots {
		rv = append(rv, chatID)
	}
	r.mu.RUnlock()

	sort.Slice(rv, func(i, j int) bool { return rv[i] < rv[j] })

	return rv
}

// ActiveCount returns a number of active chats.
func (r *StoreRegistry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.slots)
}

// AutoActivatedCount returns a number of currently active chats which were
// activated automatically.
func (r *StoreRegistry) AutoActivatedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0

	for _, slot := range r.slots {
		if slot.reason == ActivationAuto {
			count++
		}
	}

	return count
}

// AutoActivations returns a number of automatic activations since process
// start. It never decreases.
func (r *StoreRegistry) AutoActivations() uint64 {
	return r.autoActivations.Load()
}

// MemoryStats walks all stores and collects their sizes.
func (r *StoreRegistry) MemoryStats() MemoryStats {
	rv := MemoryStats{PerChatLimit: r.capacity}

	for _, slot := range r.snapshotSlots() {
		slot.mu.Lock()
		size := slot.store.Size()
		slot.mu.Unlock()

		rv.ActiveChats++
		rv.TotalEntries += size

		if size > rv.LargestChat {
			rv.LargestChat = size
		}
	}

	return rv
}

// ExpireBefore removes records first seen before deadline in all chats.
// It is a no-op unless stores are configured with retention.
func (r *StoreRegistry) ExpireBefore(deadline time.Time) int {
	removed := 0

	for _, slot := range r.snapshotSlots() {
		slot.mu.Lock()
		removed += slot.store.ExpireBefore(deadline)
		slot.mu.Unlock()
	}

	return removed
}

// Retention returns a configured record retention. 0 means records live
// until they are evicted.
func (r *StoreRegistry) Retention() time.Duration {
	return r.retention
}

func (r *StoreRegistry) snapshotSlots() []*chatSlot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rv := make([]*chatSlot, 0, len(r.slots))

	for _, slot := range r.slots {
		rv = append(rv, slot)
	}

	return rv
}

// NewStoreRegistry creates a new registry without active chats.
func NewStoreRegistry(opts StoreRegistryOpts) *StoreRegistry {
	return &StoreRegistry{
		slots:       make(map[int64]*chatSlot),
		capacity:    opts.getCapacity(),
		retention:   opts.getRetention(),
		recorder:    opts.getRecorder(),
		eventStream: opts.getEventStream(),
		logger:      opts.getLogger("registry"),
	}
}
