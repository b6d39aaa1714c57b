package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akab00m/dupclean/duplib"
	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const startupRetries = 5

// Bot is a Telegram transport of a duplicate detector.
type Bot struct {
	ctx          context.Context
	ctxCancel    context.CancelFunc
	runWaitGroup sync.WaitGroup
	stopOnce     sync.Once

	api        *tgbotapi.BotAPI
	detector   *duplib.Detector
	dispatcher *dispatcher
	deleter    *deleter

	eventStream duplib.EventStream
	logger      duplib.Logger

	pollingTimeout     time.Duration
	sweepInterval      time.Duration
	storeSizeInterval  time.Duration
	adminOnly          bool
	processBotMessages bool
	autoActivate       bool
	welcomeMessage     bool
}

// Username returns a username of the bot.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run polls updates until Shutdown is called. Updates which were sent
// while the bot was offline are dropped.
func (b *Bot) Run() error {
	b.runWaitGroup.Add(1)
	defer b.runWaitGroup.Done()

	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("cannot drop pending updates: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = int(b.pollingTimeout / time.Second)
	updateConfig.AllowedUpdates = allowedUpdates

	updates := b.api.GetUpdatesChan(updateConfig)

	b.runWaitGroup.Add(1)

	go func() {
		defer b.runWaitGroup.Done()

		b.housekeeping()
	}()

	b.logger.BindStr("username", b.Username()).Info("Bot has been started")

	for {
		select {
		case <-b.ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok || !b.dispatcher.Dispatch(update) {
				return nil
			}
		}
	}
}

// Shutdown stops polling, waits until queued updates are processed and
// releases a deletion pool.
func (b *Bot) Shutdown() {
	b.stopOnce.Do(func() {
		b.ctxCancel()
		b.api.StopReceivingUpdates()
		b.runWaitGroup.Wait()
		b.dispatcher.Stop()
		b.deleter.Shutdown()
	})
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.MyChatMember != nil:
		b.handleMyChatMember(update.MyChatMember)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.ChannelPost != nil:
		b.handleMessage(ctx, update.ChannelPost)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chat, ok := chatOf(msg)
	if !ok {
		return
	}

	if strings.HasPrefix(msg.Text, "/") {
		if msg.IsCommand() {
			b.handleCommand(msg)
		}

		return
	}

	if !b.processBotMessages && isSentByBot(msg) {
		return
	}

	verdict, err := b.detector.Check(ctx, chat.ID, convertMessage(msg))
	if err != nil {
		b.logger.
			BindInt64("chat_id", chat.ID).
			BindInt("message_id", msg.MessageID).
			WarningError("cannot check a message", err)

		return
	}

	if !verdict.IsDuplicate() {
		return
	}

	b.deleter.Schedule(deleteTask{
		chatID:      chat.ID,
		messageID:   msg.MessageID,
		contentType: verdict.ContentType,
	})
}

func (b *Bot) handleMyChatMember(update *tgbotapi.ChatMemberUpdated) {
	chat := update.Chat
	logger := b.logger.BindInt64("chat_id", chat.ID).BindStr("chat_type", chat.Type)
	registry := b.detector.Registry()

	switch {
	case isAdminMember(update.NewChatMember) && !isAdminMember(update.OldChatMember):
		if !b.autoActivate || !(chat.IsChannel() || chat.IsGroup() || chat.IsSuperGroup()) {
			return
		}

		b.deleter.Forget(chat.ID)

		if !registry.Activate(chat.ID, duplib.ActivationAuto) {
			return
		}

		logger.Info("Chat was auto-activated")

		if b.welcomeMessage {
			if err := b.send(chat.ID, 0, textAutoActivated); err != nil {
				logger.DebugError("cannot send welcome message", err)
			}
		}
	case update.NewChatMember.HasLeft() || update.NewChatMember.WasKicked():
		b.deleter.Forget(chat.ID)

		if registry.Deactivate(chat.ID) {
			logger.Info("Bot was removed from chat, data is cleaned up")
		}
	}
}

func (b *Bot) send(chatID int64, replyTo int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyToMessageID = replyTo

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("cannot send message: %w", err)
	}

	return nil
}

func (b *Bot) housekeeping() {
	sweepTicker := time.NewTicker(b.sweepInterval)
	defer sweepTicker.Stop()

	sizeTicker := time.NewTicker(b.storeSizeInterval)
	defer sizeTicker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-sweepTicker.C:
			b.sweep()
		case <-sizeTicker.C:
			b.eventStream.Send(b.ctx, duplib.NewEventStoreSize(b.detector.Registry().MemoryStats()))
		}
	}
}

func (b *Bot) sweep() {
	registry := b.detector.Registry()

	retention := registry.Retention()
	if retention <= 0 {
		return
	}

	removed := registry.ExpireBefore(time.Now().Add(-retention))

	b.logger.BindInt("removed", removed).Info("Expired records were removed")
}

func isAdminMember(member tgbotapi.ChatMember) bool {
	return member.IsAdministrator() || member.IsCreator()
}

// NewBot connects to Bot API and prepares a bot. It does not start
// polling, use Run for that.
func NewBot(opts Opts) (*Bot, error) {
	if err := opts.valid(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	logger := opts.getLogger("bot")

	tgbotapi.SetLogger(botLogger{logger: opts.getLogger("tgbotapi")}) //nolint: errcheck

	var api *tgbotapi.BotAPI

	err := backoff.RetryNotify(
		func() error {
			var err error

			api, err = tgbotapi.NewBotAPIWithClient(opts.Token, opts.getAPIEndpoint(), opts.HTTPClient)

			var apiErr *tgbotapi.Error
			if errors.As(err, &apiErr) {
				return backoff.Permanent(err) //nolint: wrapcheck
			}

			return err //nolint: wrapcheck
		},
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), startupRetries),
		func(err error, next time.Duration) {
			logger.BindStr("retry_in", next.String()).WarningError("cannot connect to Bot API", err)
		})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to Bot API: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bot := &Bot{
		ctx:                ctx,
		ctxCancel:          cancel,
		api:                api,
		detector:           opts.Detector,
		eventStream:        opts.getEventStream(),
		logger:             logger,
		pollingTimeout:     opts.getPollingTimeout(),
		sweepInterval:      opts.getSweepInterval(),
		storeSizeInterval:  opts.getStoreSizeInterval(),
		adminOnly:          opts.AdminOnly,
		processBotMessages: opts.ProcessBotMessages,
		autoActivate:       !opts.DisableAutoActivation,
		welcomeMessage:     !opts.DisableWelcomeMessage,
	}

	bot.deleter, err = newDeleter(ctx, api, opts)
	if err != nil {
		cancel()

		return nil, err
	}

	bot.dispatcher = newDispatcher(ctx, opts.getWorkers(), bot.handleUpdate)

	return bot, nil
}
