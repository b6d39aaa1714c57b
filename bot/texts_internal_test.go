package bot

import (
	"testing"
	"time"

	"github.com/akab00m/dupclean/duplib"
	"github.com/stretchr/testify/assert"
)

func TestFormatStats(t *testing.T) {
	t.Parallel()

	text := formatStats(duplib.StatsView{
		Uptime:              90 * time.Minute,
		MessagesProcessed:   200,
		DuplicatesFound:     50,
		ForwardedDuplicates: 10,
		MessagesDeleted:     40,
		ByContentType:       duplib.ContentTypeCounters{"video_note": 3, "text": 197},
		ActiveChats:         2,
		AutoActivatedChats:  1,
		AvgCheckDuration:    1500 * time.Microsecond,
		Memory: &duplib.MemoryStats{
			TotalEntries: 150,
			LargestChat:  100,
			PerChatLimit: 10000,
		},
	})

	assert.Contains(t, text, "*Runtime:* 1.50 hours")
	assert.Contains(t, text, "*Messages processed:* 200")
	assert.Contains(t, text, "*Duplicates found:* 50 (25.0%)")
	assert.Contains(t, text, "*Avg check time:* 1.50ms")
	assert.Contains(t, text, "*Duplicates deleted:* 40")
	assert.Contains(t, text, `text: 197, video\_note: 3`)
	assert.Contains(t, text, "*Forwarded duplicates:* 20.0%")
	assert.Contains(t, text, "*Detection efficiency:* 20.0%")
	assert.Contains(t, text, "*Memory usage:* 150 entries")
	assert.Contains(t, text, "last 10000 messages per chat")
}

func TestFormatStatsEmpty(t *testing.T) {
	t.Parallel()

	text := formatStats(duplib.StatsView{})

	assert.Contains(t, text, "None yet")
	assert.Contains(t, text, "*Forwarded duplicates:* 0.0%")
	assert.Contains(t, text, "*Avg check time:* 0.00ms")
}

func TestFormatChatStats(t *testing.T) {
	t.Parallel()

	text := formatChatStats(duplib.ChatStatsView{
		ActivationReason:  "auto",
		MessagesProcessed: 12,
		DuplicatesFound:   3,
		Deleted:           2,
	})

	assert.Contains(t, text, "*This chat*")
	assert.Contains(t, text, "*Activation:* auto")
	assert.Contains(t, text, "*Messages processed:* 12")
	assert.Contains(t, text, "*Duplicates found:* 3")
	assert.Contains(t, text, "*Duplicates deleted:* 2")
}
