package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akab00m/dupclean/antireplay"
	"github.com/akab00m/dupclean/duplib"
	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/panjf2000/ants/v2"
)

// requester is a part of tgbotapi.BotAPI used to call methods which
// return no useful result.
type requester interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type deleteTask struct {
	chatID      int64
	messageID   int
	contentType duplib.ContentType
}

// retryAfterBackOff respects retry_after of 429 responses and falls back
// to exponential backoff for other temporary errors.
type retryAfterBackOff struct {
	base       backoff.BackOff
	retryAfter time.Duration
}

func (r *retryAfterBackOff) NextBackOff() time.Duration {
	if r.retryAfter > 0 {
		rv := r.retryAfter
		r.retryAfter = 0

		return rv
	}

	return r.base.NextBackOff()
}

func (r *retryAfterBackOff) Reset() {
	r.retryAfter = 0
	r.base.Reset()
}

type errorTracker struct {
	mu       sync.Mutex
	counters map[int64]int
	limit    int
}

// Fail accounts a failure. It returns true if chat has exceeded a limit,
// a counter is reset in that case.
func (e *errorTracker) Fail(chatID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.counters[chatID]++

	if e.counters[chatID] <= e.limit {
		return false
	}

	delete(e.counters, chatID)

	return true
}

func (e *errorTracker) Forget(chatID int64) {
	e.mu.Lock()
	delete(e.counters, chatID)
	e.mu.Unlock()
}

func (e *errorTracker) Count(chatID int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.counters[chatID]
}

type deleter struct {
	ctx             context.Context
	api             requester
	pool            *ants.PoolWithFunc
	limiter         *rateLimiter
	replayGuard     antireplay.Cache
	errors          *errorTracker
	detector        *duplib.Detector
	eventStream     duplib.EventStream
	logger          duplib.Logger
	retryAttempts   uint64
	initialInterval time.Duration
}

// Schedule queues a deletion. It never blocks.
func (d *deleter) Schedule(task deleteTask) {
	logger := d.logger.BindInt64("chat_id", task.chatID).BindInt("message_id", task.messageID)

	if d.replayGuard.SeenBefore(antireplay.MessageKey(task.chatID, task.messageID)) {
		logger.Debug("message was already scheduled for deletion")

		return
	}

	err := d.pool.Invoke(task)

	switch {
	case err == nil:
	case errors.Is(err, ants.ErrPoolClosed):
		logger.Debug("deleter is closed")
	case errors.Is(err, ants.ErrPoolOverload):
		logger.Info("deletion was concurrency limited")
		d.detector.RecordDeletion(task.chatID, false)
		d.eventStream.Send(d.ctx, duplib.NewEventDeleteFailed(task.chatID, DeleteFailureOverload))
	default:
		logger.WarningError("cannot schedule deletion", err)
	}
}

// Forget drops all per-chat state of the deleter.
func (d *deleter) Forget(chatID int64) {
	d.errors.Forget(chatID)
	d.limiter.Forget(chatID)
}

func (d *deleter) Shutdown() {
	d.pool.Release()
	d.limiter.Stop()
}

func (d *deleter) run(task deleteTask) {
	logger := d.logger.BindInt64("chat_id", task.chatID).BindInt("message_id", task.messageID)

	err := d.delete(task)
	if err == nil {
		logger.Debug("duplicate was deleted")
		d.detector.RecordDeletion(task.chatID, true)
		d.eventStream.Send(d.ctx, duplib.NewEventDeleted(task.chatID, task.contentType))

		return
	}

	if errors.Is(err, context.Canceled) {
		return
	}

	reason := classifyDeleteError(err)

	switch reason {
	case DeleteFailureRateLimited:
		logger.WarningError("rate limited, duplicate is left", err)
	case DeleteFailureCannotDelete, DeleteFailureNotFound:
		logger.InfoError("message was already deleted or is too old", err)
	case DeleteFailureNoRights:
		logger.WarningError("insufficient permissions, need delete messages right", err)
	default:
		logger.WarningError("cannot delete duplicate", err)
	}

	d.detector.RecordDeletion(task.chatID, false)
	d.eventStream.Send(d.ctx, duplib.NewEventDeleteFailed(task.chatID, reason))

	if reason != DeleteFailureNotFound && d.errors.Fail(task.chatID) {
		logger.Warning("too many errors, deactivating chat")
		d.detector.Registry().Deactivate(task.chatID)
		d.limiter.Forget(task.chatID)
	}
}

func (d *deleter) delete(task deleteTask) error {
	if err := d.limiter.Wait(d.ctx, task.chatID); err != nil {
		return err
	}

	base := backoff.NewExponentialBackOff()
	base.InitialInterval = d.initialInterval

	policy := &retryAfterBackOff{base: base}
	operation := func() error {
		_, err := d.api.Request(tgbotapi.NewDeleteMessage(task.chatID, task.messageID))
		if err == nil {
			return nil
		}

		var apiErr *tgbotapi.Error

		switch {
		case errors.As(err, &apiErr) && apiErr.RetryAfter > 0:
			policy.retryAfter = time.Duration(apiErr.RetryAfter) * time.Second
		case errors.As(err, &apiErr):
			return backoff.Permanent(err) //nolint: wrapcheck
		}

		return err
	}
	notify := func(err error, next time.Duration) {
		d.logger.
			BindInt64("chat_id", task.chatID).
			BindStr("retry_in", next.String()).
			DebugError("cannot delete message, retrying", err)
	}

	err := backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, d.retryAttempts), d.ctx),
		notify)
	if err != nil {
		return fmt.Errorf("cannot delete message: %w", err)
	}

	return nil
}

func classifyDeleteError(err error) string {
	var apiErr *tgbotapi.Error

	if !errors.As(err, &apiErr) {
		return DeleteFailureOther
	}

	message := strings.ToLower(apiErr.Message)

	switch {
	case apiErr.Code == 429 || apiErr.RetryAfter > 0, //nolint: gomnd
		strings.Contains(message, "too many requests"),
		strings.Contains(message, "rate limit"):
		return DeleteFailureRateLimited
	case strings.Contains(message, "message to delete not found"):
		return DeleteFailureNotFound
	case strings.Contains(message, "message can't be deleted"):
		return DeleteFailureCannotDelete
	case strings.Contains(message, "not enough rights"),
		strings.Contains(message, "have no rights"):
		return DeleteFailureNoRights
	}

	return DeleteFailureOther
}

func newDeleter(ctx context.Context, api requester, opts Opts) (*deleter, error) {
	d := &deleter{
		ctx:         ctx,
		api:         api,
		replayGuard: opts.getReplayGuard(),
		errors: &errorTracker{
			counters: make(map[int64]int),
			limit:    opts.getMaxErrorsPerChat(),
		},
		limiter:         newRateLimiter(opts.DeletePerSecond, opts.getDeleteBurst(), rateLimiterCleanup),
		detector:        opts.Detector,
		eventStream:     opts.getEventStream(),
		logger:          opts.getLogger("deleter"),
		retryAttempts:   opts.getRetryAttempts(),
		initialInterval: backoff.DefaultInitialInterval,
	}

	pool, err := ants.NewPoolWithFunc(opts.getDeleteConcurrency(),
		func(arg interface{}) {
			d.run(arg.(deleteTask)) //nolint: forcetypeassert
		},
		ants.WithLogger(opts.getLogger("ants")),
		ants.WithNonblocking(true))
	if err != nil {
		d.limiter.Stop()

		return nil, fmt.Errorf("cannot create worker pool: %w", err)
	}

	d.pool = pool

	return d, nil
}
