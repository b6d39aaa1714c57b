// Package bot is a Telegram Bot API transport for a duplicate detector.
//
// It polls updates, converts messages into duplib.Message, asks a
// detector for a verdict and deletes duplicates. It also handles
// /startbot, /stopbot and /stats commands and activates chats
// automatically when the bot is promoted to an administrator.
//
// Updates of the same chat are processed strictly in order of arrival:
// they are routed onto shards by a hash of the chat id. This guarantees
// that the first copy of some content always survives and later copies
// are deleted. Deletions are network calls and are done on a worker pool,
// so a slow Bot API never stalls detection.
package bot

import (
	"errors"
	"time"
)

const (
	DefaultPollingTimeout    = time.Minute
	DefaultDeleteConcurrency = 16
	DefaultDeletePerSecond   = 10
	DefaultDeleteBurst       = 20
	DefaultMaxErrorsPerChat  = 10
	DefaultRetryAttempts     = 3
	DefaultSweepInterval     = 6 * time.Hour
	DefaultStoreSizeInterval = 30 * time.Second

	// shardBufferSize is a queue length of a single dispatcher shard.
	shardBufferSize = 128

	// rateLimiterCleanup is how often idle per-chat limiters are dropped.
	rateLimiterCleanup = 10 * time.Minute

	// groupAnonymousBotID is a user which posts on behalf of anonymous
	// group administrators.
	groupAnonymousBotID = 1087968824
)

const (
	CommandStartBot = "startbot"
	CommandStopBot  = "stopbot"
	CommandStats    = "stats"
)

// Delete failure reasons. They are used as metric labels.
const (
	DeleteFailureRateLimited  = "rate_limited"
	DeleteFailureCannotDelete = "cannot_delete"
	DeleteFailureNotFound     = "not_found"
	DeleteFailureNoRights     = "no_rights"
	DeleteFailureOverload     = "overload"
	DeleteFailureOther        = "other"
)

var (
	ErrDetectorIsNotDefined = errors.New("detector is not defined")
	ErrTokenIsNotDefined    = errors.New("bot token is not defined")
	ErrClientIsNotDefined   = errors.New("http client is not defined")
)

var allowedUpdates = []string{"message", "channel_post", "my_chat_member"}
