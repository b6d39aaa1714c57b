package bot

import (
	"net/http"
	"runtime"
	"time"

	"github.com/akab00m/dupclean/antireplay"
	"github.com/akab00m/dupclean/duplib"
	"github.com/akab00m/dupclean/events"
	"github.com/akab00m/dupclean/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Opts is a structure with settings of the bot.
type Opts struct {
	// Token is a token given by @BotFather.
	//
	// This is a mandatory setting.
	Token string

	// HTTPClient is a client used for all Bot API calls. Its timeout has
	// to be longer than PollingTimeout.
	//
	// This is a mandatory setting.
	HTTPClient *http.Client

	// Detector decides which messages are duplicates.
	//
	// This is a mandatory setting.
	Detector *duplib.Detector

	// APIEndpoint is a Bot API endpoint template with placeholders for a
	// token and a method. Default is https://api.telegram.org.
	//
	// This is an optional setting.
	APIEndpoint string

	// ReplayGuard remembers deleted messages so the same message is not
	// deleted twice on redelivered updates.
	//
	// This is an optional setting.
	ReplayGuard antireplay.Cache

	EventStream duplib.EventStream
	Logger      duplib.Logger

	// PollingTimeout is a long polling timeout of getUpdates.
	PollingTimeout time.Duration

	// Workers is a number of ordered dispatcher shards. Default is a
	// number of CPUs.
	Workers uint

	DeleteConcurrency uint

	// DeletePerSecond is a per-chat limit of deletions. 0 disables it.
	DeletePerSecond uint
	DeleteBurst     uint

	// MaxErrorsPerChat is a number of failed deletions after which a chat
	// is deactivated.
	MaxErrorsPerChat uint

	// RetryAttempts is a number of retries of a single deletion.
	RetryAttempts uint

	// SweepInterval is how often expired records are removed. It matters
	// only if the detector registry has retention.
	SweepInterval time.Duration

	// StoreSizeInterval is how often memory statistics are reported.
	StoreSizeInterval time.Duration

	// AdminOnly restricts commands to chat administrators.
	AdminOnly bool

	// ProcessBotMessages makes the bot check messages sent by other bots.
	ProcessBotMessages bool

	// DisableAutoActivation turns off activation on promotion to admin.
	DisableAutoActivation bool

	// DisableWelcomeMessage turns off a message sent on auto-activation.
	DisableWelcomeMessage bool
}

func (o Opts) valid() error {
	switch {
	case o.Token == "":
		return ErrTokenIsNotDefined
	case o.HTTPClient == nil:
		return ErrClientIsNotDefined
	case o.Detector == nil:
		return ErrDetectorIsNotDefined
	}

	return nil
}

func (o Opts) getAPIEndpoint() string {
	if o.APIEndpoint == "" {
		return tgbotapi.APIEndpoint
	}

	return o.APIEndpoint
}

func (o Opts) getReplayGuard() antireplay.Cache {
	if o.ReplayGuard == nil {
		return antireplay.NewNoop()
	}

	return o.ReplayGuard
}

func (o Opts) getEventStream() duplib.EventStream {
	if o.EventStream == nil {
		return events.NewNoopStream()
	}

	return o.EventStream
}

func (o Opts) getLogger(name string) duplib.Logger {
	if o.Logger == nil {
		return logger.NewNoopLogger()
	}

	return o.Logger.Named(name)
}

func (o Opts) getPollingTimeout() time.Duration {
	if o.PollingTimeout <= 0 {
		return DefaultPollingTimeout
	}

	return o.PollingTimeout
}

func (o Opts) getWorkers() int {
	if o.Workers == 0 {
		return runtime.NumCPU()
	}

	return int(o.Workers)
}

func (o Opts) getDeleteConcurrency() int {
	if o.DeleteConcurrency == 0 {
		return DefaultDeleteConcurrency
	}

	return int(o.DeleteConcurrency)
}

func (o Opts) getDeleteBurst() int {
	if o.DeleteBurst == 0 {
		return DefaultDeleteBurst
	}

	return int(o.DeleteBurst)
}

func (o Opts) getMaxErrorsPerChat() int {
	if o.MaxErrorsPerChat == 0 {
		return DefaultMaxErrorsPerChat
	}

	return int(o.MaxErrorsPerChat)
}

func (o Opts) getRetryAttempts() uint64 {
	if o.RetryAttempts == 0 {
		return DefaultRetryAttempts
	}

	return uint64(o.RetryAttempts)
}

func (o Opts) getSweepInterval() time.Duration {
	if o.SweepInterval <= 0 {
		return DefaultSweepInterval
	}

	return o.SweepInterval
}

func (o Opts) getStoreSizeInterval() time.Duration {
	if o.StoreSizeInterval <= 0 {
		return DefaultStoreSizeInterval
	}

	return o.StoreSizeInterval
}
