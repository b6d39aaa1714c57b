package duplib

import (
	"container/list"
	"time"
)

// DefaultChatStoreCapacity is a number of records kept per chat if nothing
// else is configured.
const DefaultChatStoreCapacity = 10000

// ChatStore is a bounded collection of records of a single chat.
//
// Eviction is strict FIFO by insertion order: lookups never refresh a
// record, so content seen C insertions ago is forgotten even if it was
// duplicated many times since. The goal is to bound memory, not to cache
// hot items.
//
// ChatStore is not safe for concurrent use. StoreRegistry wraps each store
// with a per-chat mutex.
type ChatStore struct {
	capacity  int
	retention time.Duration
	records   map[Fingerprint]*list.Element
	order     *list.List // oldest at front
}

// Lookup returns a record for the fingerprint.
//
// If retention is set and record is older than retention, it is removed
// and treated as absent.
func (c *ChatStore) Lookup(fp Fingerprint) (Record, bool) {
	elem, ok := c.records[fp]
	if !ok {
		return Record{}, false
	}

	rec := elem.Value.(Record) //nolint: forcetypeassert

	if c.retention > 0 && time.Since(rec.FirstSeenAt) > c.retention {
		c.order.Remove(elem)
		delete(c.records, fp)

		return Record{}, false
	}

	return rec, true
}

// Insert adds a new record. If store is full, the oldest record is evicted
// before insertion, so Size never exceeds Capacity. Inserting a fingerprint
// which is already present is a no-op: record keeps its original position.
//
// Returns a number of evicted records.
func (c *ChatStore) Insert(fp Fingerprint, rec Record) int {
	if _, ok := c.records[fp]; ok {
		return 0
	}

	evicted := 0

	for c.order.Len() >= c.capacity {
		if !c.evictOldest() {
			break
		}

		evicted++
	}

	rec.Fingerprint = fp
	c.records[fp] = c.order.PushBack(rec)

	return evicted
}

// ExpireBefore removes all records which were first seen before a given
// time. Since records are immutable and ordered by insertion, this pops
// from the head until the first fresh record.
func (c *ChatStore) ExpireBefore(deadline time.Time) int {
	removed := 0

	for elem := c.order.Front(); elem != nil; elem = c.order.Front() {
		if !elem.Value.(Record).FirstSeenAt.Before(deadline) { //nolint: forcetypeassert
			break
		}

		c.evictOldest()

		removed++
	}

	return removed
}

// Size returns a number of records in the store.
func (c *ChatStore) Size() int {
	return c.order.Len()
}

// Capacity returns a maximal number of records.
func (c *ChatStore) Capacity() int {
	return c.capacity
}

func (c *ChatStore) consistent() bool {
	return len(c.records) == c.order.Len() && c.order.Len() <= c.capacity
}

func (c *ChatStore) evictOldest() bool {
	front := c.order.Front()
	if front == nil {
		return false
	}

	c.order.Remove(front)
	delete(c.records, front.Value.(Record).Fingerprint) //nolint: forcetypeassert

	return true
}

// NewChatStore creates an empty store. Non-positive capacity means
// DefaultChatStoreCapacity, zero retention means no time-based expiry.
func NewChatStore(capacity int, retention time.Duration) *ChatStore {
	if capacity <= 0 {
		capacity = DefaultChatStoreCapacity
	}

	if retention < 0 {
		retention = 0
	}

	return &ChatStore{
		capacity:  capacity,
		retention: retention,
		records:   make(map[Fingerprint]*list.Element),
		order:     list.New(),
	}
}
