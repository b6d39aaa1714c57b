package bot

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/akab00m/dupclean/duplib"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const detectedContent = "🔍 *Detecting all duplicates:*\n" +
	"• Text messages (forwarded or original)\n" +
	"• Images & Photos\n" +
	"• Videos & GIFs\n" +
	"• Audio & Voice notes\n" +
	"• Documents & Files\n" +
	"• Stickers & Animations\n\n"

const textAutoActivated = "🤖 *Auto-Activated!* Duplicate Cleaner is now monitoring this chat.\n\n" +
	detectedContent +
	"⚡ *Ultra-fast detection* - duplicates deleted instantly\n" +
	"🤖 *Auto-mode* - no commands needed"

const textActivated = "🤖 *Duplicate Cleaner Activated!*\n\n" +
	detectedContent +
	"⚡ *Ultra-fast detection* - duplicates deleted instantly\n" +
	"🤖 *Auto-mode* - activates automatically when added\n\n" +
	"Note: Bot auto-activates - no commands needed"

const textDeactivated = "🛑 *Duplicate Cleaner Temporarily Deactivated*\n\n" +
	"📴 Monitoring stopped for this chat\n" +
	"🗑️ All stored data cleared\n" +
	"💤 Bot is now inactive\n\n" +
	"⚠️ *Note*: Bot will auto-reactivate if you remove and re-add it as admin\n" +
	"Use `/startbot` for manual reactivation"

const (
	textNotAdmin     = "⛔ Only chat administrators can use this command."
	textCommandError = "❌ An error occurred while processing the command."
)

func formatStats(view duplib.StatsView) string {
	memory := duplib.MemoryStats{}
	if view.Memory != nil {
		memory = *view.Memory
	}

	forwardedRate := 0.0
	if view.DuplicatesFound > 0 {
		forwardedRate = float64(view.ForwardedDuplicates) / float64(view.DuplicatesFound) * 100 //nolint: gomnd
	}

	efficiency := 0.0
	if view.MessagesProcessed > 0 {
		efficiency = float64(view.MessagesDeleted) / float64(view.MessagesProcessed) * 100 //nolint: gomnd
	}

	builder := strings.Builder{}

	builder.WriteString("📊 *Bot Performance Stats*\n\n")
	fmt.Fprintf(&builder, "⏱️ *Runtime:* %.2f hours\n", view.Uptime.Hours())
	fmt.Fprintf(&builder, "📨 *Messages processed:* %d\n", view.MessagesProcessed)
	fmt.Fprintf(&builder, "🔁 *Duplicates found:* %d (%.1f%%)\n", view.DuplicatesFound, view.DuplicateRate())
	fmt.Fprintf(&builder, "🗑️ *Duplicates deleted:* %d\n", view.MessagesDeleted)
	fmt.Fprintf(&builder, "📋 *Content breakdown:* %s\n",
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, formatContentTypes(view.ByContentType)))
	fmt.Fprintf(&builder, "📤 *Forwarded duplicates:* %.1f%%\n", forwardedRate)
	fmt.Fprintf(&builder, "💬 *Active chats:* %d\n", view.ActiveChats)
	fmt.Fprintf(&builder, "🤖 *Auto-activated chats:* %d\n", view.AutoActivatedChats)
	fmt.Fprintf(&builder, "🧠 *Memory usage:* %d entries\n", memory.TotalEntries)
	fmt.Fprintf(&builder, "📈 *Largest chat:* %d messages\n", memory.LargestChat)
	fmt.Fprintf(&builder, "🎯 *Detection efficiency:* %.1f%%\n", efficiency)
	fmt.Fprintf(&builder, "⚡ *Avg check time:* %.2fms\n", milliseconds(view.AvgCheckDuration))
	fmt.Fprintf(&builder, "♾️ *Memory retention:* last %d messages per chat", memory.PerChatLimit)

	return builder.String()
}

func formatChatStats(view duplib.ChatStatsView) string {
	builder := strings.Builder{}

	builder.WriteString("💬 *This chat*\n")
	fmt.Fprintf(&builder, "🔌 *Activation:* %s\n", view.ActivationReason)
	fmt.Fprintf(&builder, "📨 *Messages processed:* %d\n", view.MessagesProcessed)
	fmt.Fprintf(&builder, "🔁 *Duplicates found:* %d\n", view.DuplicatesFound)
	fmt.Fprintf(&builder, "🗑️ *Duplicates deleted:* %d", view.Deleted)

	return builder.String()
}

func milliseconds(duration time.Duration) float64 {
	return float64(duration) / float64(time.Millisecond)
}

func formatContentTypes(counters duplib.ContentTypeCounters) string {
	if len(counters) == 0 {
		return "None yet"
	}

	names := make([]string, 0, len(counters))

	for name := range counters {
		names = append(names, name)
	}

	sort.Strings(names)

	parts := make([]string, 0, len(names))

	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, counters[name]))
	}

	return strings.Join(parts, ", ")
}
