package bot

import (
	"strings"

	"github.com/akab00m/dupclean/duplib"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	command := msg.Command()

	switch command {
	case CommandStartBot, CommandStopBot, CommandStats:
	default:
		return
	}

	if _, target, ok := strings.Cut(msg.CommandWithAt(), "@"); ok &&
		!strings.EqualFold(target, b.Username()) {
		return
	}

	chatID := msg.Chat.ID
	logger := b.logger.BindInt64("chat_id", chatID).BindStr("command", command)

	if msg.From != nil {
		logger = logger.BindInt64("user_id", msg.From.ID)
	}

	if b.adminOnly && !b.isAdmin(msg) {
		logger.Info("Command was rejected, user is not an admin")
		b.reply(logger, msg, textNotAdmin)

		return
	}

	registry := b.detector.Registry()

	switch command {
	case CommandStartBot:
		b.deleter.Forget(chatID)
		registry.Activate(chatID, duplib.ActivationManual)
		logger.Info("Chat was activated")
		b.reply(logger, msg, textActivated)
	case CommandStopBot:
		registry.Deactivate(chatID)
		b.deleter.Forget(chatID)
		logger.Info("Chat was deactivated")
		b.reply(logger, msg, textDeactivated)
	case CommandStats:
		text := formatStats(b.detector.Stats())

		if chat, ok := b.detector.ChatStats(chatID); ok && !msg.Chat.IsPrivate() {
			text += "\n\n" + formatChatStats(chat)
		}

		b.reply(logger, msg, text)
	}
}

func (b *Bot) reply(logger duplib.Logger, msg *tgbotapi.Message, text string) {
	err := b.send(msg.Chat.ID, msg.MessageID, text)
	if err == nil {
		return
	}

	logger.WarningError("cannot reply to command", err)

	plain := tgbotapi.NewMessage(msg.Chat.ID, textCommandError)
	plain.ReplyToMessageID = msg.MessageID

	if _, err := b.api.Send(plain); err != nil {
		logger.DebugError("cannot send error reply", err)
	}
}

func (b *Bot) isAdmin(msg *tgbotapi.Message) bool {
	switch {
	case msg.Chat.IsPrivate(), msg.Chat.IsChannel():
		return true
	case msg.SenderChat != nil && msg.SenderChat.ID == msg.Chat.ID:
		// anonymous administrator
		return true
	case msg.From == nil:
		return false
	}

	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: msg.Chat.ID,
			UserID: msg.From.ID,
		},
	})
	if err != nil {
		b.logger.BindInt64("chat_id", msg.Chat.ID).WarningError("cannot check admin status", err)

		return false
	}

	return isAdminMember(member)
}
