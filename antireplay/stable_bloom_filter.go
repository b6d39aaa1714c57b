package antireplay

import (
	"sync"
	"sync/atomic"

	"github.com/OneOfOne/xxhash"
	boom "github.com/tylertreat/BoomFilters"
)

// StableBloomFilter is a Cache with counters.
type StableBloomFilter struct {
	filter *boom.StableBloomFilter
	mutex  sync.Mutex

	totalChecks atomic.Uint64
	seenBefore  atomic.Uint64
	firstSeen   atomic.Uint64
}

func (s *StableBloomFilter) SeenBefore(key []byte) bool {
	s.totalChecks.Add(1)

	s.mutex.Lock()
	seen := s.filter.TestAndAdd(key)
	s.mutex.Unlock()

	if seen {
		s.seenBefore.Add(1)
	} else {
		s.firstSeen.Add(1)
	}

	return seen
}

// Metrics returns current cache statistics.
type Metrics struct {
	TotalChecks uint64  `json:"total_checks"`
	SeenBefore  uint64  `json:"seen_before"`
	FirstSeen   uint64  `json:"first_seen"`
	SeenRate    float64 `json:"seen_rate"` // percents, 0..100

	// EstimatedFPRate is a false positive rate the filter converges to.
	EstimatedFPRate float64 `json:"estimated_fp_rate"`
}

func (s *StableBloomFilter) GetMetrics() Metrics {
	totalChecks := s.totalChecks.Load()
	seenBefore := s.seenBefore.Load()

	var seenRate float64
	if totalChecks > 0 {
		seenRate = float64(seenBefore) / float64(totalChecks) * 100.0 //nolint: gomnd
	}

	s.mutex.Lock()
	fpRate := s.filter.FalsePositiveRate()
	s.mutex.Unlock()

	return Metrics{
		TotalChecks:     totalChecks,
		SeenBefore:      seenBefore,
		FirstSeen:       s.firstSeen.Load(),
		SeenRate:        seenRate,
		EstimatedFPRate: fpRate,
	}
}

// NewStableBloomFilter returns a new cache. byteSize is a memory
// allocation in bytes (0 for default), errorRate is a desired false
// positive rate (non-positive for default).
func NewStableBloomFilter(byteSize uint, errorRate float64) *StableBloomFilter {
	if byteSize == 0 {
		byteSize = DefaultStableBloomFilterMaxSize
	}

	if errorRate <= 0 {
		errorRate = DefaultStableBloomFilterErrorRate
	}

	sf := boom.NewDefaultStableBloomFilter(byteSize*8, errorRate) //nolint: gomnd
	sf.SetHash(xxhash.New64())

	return &StableBloomFilter{
		filter: sf,
	}
}

var _ Cache = (*StableBloomFilter)(nil)
