// Package duplib contains a detector of repeated content in Telegram
// chats.
//
// Every active chat has a bounded store of fingerprints of messages which
// were seen there. A fingerprint is a digest of normalized message content:
// text for text messages and a stable file id for media. Neither a sender
// nor a forward origin is a part of it, so a forwarded copy of a post is a
// duplicate of the original post and vice versa.
//
// Stores are strict FIFO: when a store is full, the oldest record is
// evicted. Lookups do not refresh records, so memory is bounded by
// capacity * number of active chats regardless of traffic.
//
// A typical setup is
//
//	stats := duplib.NewStatsAggregator()
//	registry := duplib.NewStoreRegistry(duplib.StoreRegistryOpts{
//	    Recorder: stats,
//	})
//	detector, _ := duplib.NewDetector(duplib.DetectorOpts{
//	    Registry: registry,
//	    Stats:    stats,
//	})
//
//	registry.Activate(chatID, duplib.ActivationManual)
//
//	verdict, err := detector.Check(ctx, chatID, msg)
//	if err == nil && verdict.IsDuplicate() {
//	    // delete a message
//	}
//
// Detector does no I/O and never blocks except on a short per-chat lock.
// Checks for the same chat are serialized, so out of N concurrent copies
// of the same content exactly one is new.
package duplib
