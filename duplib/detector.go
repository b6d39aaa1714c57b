package duplib

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Detector decides if a message of a chat repeats content which was
// already seen in the same chat.
//
// Detector does no I/O: it only fingerprints a message and looks it up
// in a store of the chat. Acting on a verdict (deleting a message) is a
// job of a transport.
type Detector struct {
	registry      *StoreRegistry
	stats         *StatsAggregator
	fingerprinter Fingerprinter
	eventStream   EventStream
	logger        Logger
}

// Check classifies a message.
//
// For inactive chats it returns StatusChatInactive and touches nothing. For
// messages without checkable content it returns StatusSkipped. Otherwise
// a fingerprint is looked up in a chat store: a hit is a duplicate and the
// record is left at its original position, a miss inserts a new record.
//
// The only error is ErrStoreInvariant.
func (d *Detector) Check(ctx context.Context, chatID int64, msg Message) (Verdict, error) {
	started := time.Now()

	if !d.registry.IsActive(chatID) {
		return Verdict{
			Status:       StatusChatInactive,
			ContentType:  msg.ContentType,
			WasForwarded: msg.IsForwarded,
		}, nil
	}

	fp, contentType, wasForwarded, err := d.fingerprinter.Fingerprint(msg)
	verdict := Verdict{
		ContentType:  contentType,
		WasForwarded: wasForwarded,
		Fingerprint:  fp,
	}

	if err != nil {
		return d.skip(ctx, chatID, verdict, SkipUnsupported), nil
	}

	handle, err := d.registry.GetOrCreate(chatID)
	if errors.Is(err, ErrChatNotActive) {
		// deactivated between IsActive and GetOrCreate
		verdict.Status = StatusChatInactive

		return verdict, nil
	}

	evicted := 0
	err = handle.With(func(store *ChatStore) error {
		if rec, ok := store.Lookup(fp); ok {
			if msg.MessageID != 0 && rec.MessageID == msg.MessageID {
				verdict.Status = StatusSkipped
				verdict.SkipReason = SkipRedelivery
			} else {
				verdict.Status = StatusDuplicate
			}
		} else {
			verdict.Status = StatusNew
			evicted = store.Insert(fp, Record{
				FirstSeenAt:  started,
				ContentType:  contentType,
				WasForwarded: wasForwarded,
				MessageID:    msg.MessageID,
			})
		}

		if !store.consistent() {
			return fmt.Errorf("chat %d (size=%d, capacity=%d): %w",
				chatID, store.Size(), store.Capacity(), ErrStoreInvariant)
		}

		return nil
	})
	if err != nil {
		d.logger.BindInt64("chat_id", chatID).WarningError("cannot check a message", err)

		return verdict, err
	}

	if verdict.Status == StatusSkipped {
		return d.skip(ctx, chatID, verdict, verdict.SkipReason), nil
	}

	if evicted > 0 {
		d.stats.RecordEviction(chatID, evicted)
		d.eventStream.Send(ctx, NewEventEvicted(chatID, evicted))
	}

	duration := time.Since(started)

	d.stats.RecordOutcome(chatID, contentType, wasForwarded, verdict.IsDuplicate())
	d.stats.ObserveFingerprint(fp)
	d.stats.ObserveCheckDuration(duration)
	d.eventStream.Send(ctx, NewEventChecked(chatID, verdict, duration))

	return verdict, nil
}

// Registry returns a registry this detector works with.
func (d *Detector) Registry() *StoreRegistry {
	return d.registry
}

// Stats returns a global snapshot with memory statistics of chat stores.
func (d *Detector) Stats() StatsView {
	view := d.stats.Snapshot()
	mem := d.registry.MemoryStats()
	view.Memory = &mem

	return view
}

// RecordDeletion accounts a result of a duplicate deletion made by a
// transport.
func (d *Detector) RecordDeletion(chatID int64, ok bool) {
	d.stats.RecordDeletion(chatID, ok)
}

// ChatStats returns a snapshot of a single chat.
func (d *Detector) ChatStats(chatID int64) (ChatStatsView, bool) {
	return d.stats.ChatSnapshot(chatID)
}

func (d *Detector) skip(ctx context.Context, chatID int64, verdict Verdict, reason SkipReason) Verdict {
	verdict.Status = StatusSkipped
	verdict.SkipReason = reason

	d.stats.RecordSkip(chatID, reason)
	d.eventStream.Send(ctx, NewEventSkipped(chatID, reason))

	return verdict
}

// NewDetector creates a new detector.
func NewDetector(opts DetectorOpts) (*Detector, error) {
	if err := opts.valid(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &Detector{
		registry:      opts.Registry,
		stats:         opts.Stats,
		fingerprinter: Fingerprinter{IncludeCaption: opts.IncludeCaption},
		eventStream:   opts.getEventStream(),
		logger:        opts.getLogger("detector"),
	}, nil
}
