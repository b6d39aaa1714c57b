// Package antireplay remembers which messages were already handed over to
// a deleter.
//
// Bot API may deliver the same update more than once (network errors on
// getUpdates, restarts before an offset was confirmed). A duplicate which
// was deleted once should not produce a second deleteMessage call with its
// inevitable "message to delete not found" error, which also counts
// towards a per-chat error budget.
//
// # Stable Bloom Filter
//
// The cache is a Stable Bloom Filter: a probabilistic structure with
// constant memory which keeps a constant false positive rate on unbounded
// streams. False negatives are possible for very old keys (cells decay),
// false positives are possible with a configured rate. A false positive
// means one duplicate is not deleted; an original is never touched by this
// package.
//
// Default values:
//   - Memory: 1 MB (DefaultStableBloomFilterMaxSize)
//   - False positive rate: 0.1% (DefaultStableBloomFilterErrorRate)
//
// # Usage Example
//
//	cache := antireplay.NewStableBloomFilter(1024*1024, 0.001)
//
//	if cache.SeenBefore(antireplay.MessageKey(chatID, messageID)) {
//	    return // already scheduled for deletion
//	}
//
// Based on "Approximately Detecting Duplicates for Streaming Data using
// Stable Bloom Filters" by Deng and Rafiei (2006).
package antireplay
