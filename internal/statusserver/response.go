package statusserver

import (
	"fmt"
	"math"
	"time"

	"github.com/akab00m/dupclean/antireplay"
	"github.com/akab00m/dupclean/duplib"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type statsResponse struct {
	Status          string                 `json:"status"`
	Timestamp       time.Time              `json:"timestamp"`
	InstanceID      string                 `json:"instance_id"`
	UptimeHours     float64                `json:"uptime_hours"`
	Performance     performanceSection     `json:"performance"`
	ContentAnalysis contentAnalysisSection `json:"content_analysis"`
	ChatManagement  chatManagementSection  `json:"chat_management"`
	MemoryStats     memoryStatsSection     `json:"memory_stats"`
	SystemInfo      systemInfoSection      `json:"system_info"`
	ReplayGuard     *antireplay.Metrics    `json:"replay_guard,omitempty"`
}

type performanceSection struct {
	MessagesProcessed   uint64 `json:"messages_processed"`
	DuplicatesFound     uint64 `json:"duplicates_found"`
	DuplicatesDeleted   uint64 `json:"duplicates_deleted"`
	DeleteFailures      uint64 `json:"delete_failures"`
	DuplicateRate       string `json:"duplicate_rate"`
	DetectionEfficiency string `json:"detection_efficiency"`
	AvgResponseTime     string `json:"avg_response_time"`
	SkippedUnsupported  uint64 `json:"skipped_unsupported"`
	SkippedRedelivery   uint64 `json:"skipped_redelivery"`
}

type forwardedVsOriginal struct {
	Forwarded uint64 `json:"forwarded"`
	Original  uint64 `json:"original"`
}

type contentAnalysisSection struct {
	TypesProcessed          duplib.ContentTypeCounters `json:"types_processed"`
	DuplicatesByType        duplib.ContentTypeCounters `json:"duplicates_by_type"`
	ForwardedDuplicatesRate string                     `json:"forwarded_duplicates_rate"`
	ForwardedVsOriginal     forwardedVsOriginal        `json:"forwarded_vs_original"`
	DistinctContentEstimate uint64                     `json:"distinct_content_estimate"`
}

type chatManagementSection struct {
	ActiveChats        int64  `json:"active_chats"`
	AutoActivatedChats int64  `json:"auto_activated_chats"`
	AutoActivations    uint64 `json:"auto_activations"`
}

type memoryStatsSection struct {
	TotalEntries    int    `json:"total_entries"`
	LargestChatSize int    `json:"largest_chat_size"`
	PerChatLimit    int    `json:"per_chat_limit"`
	Evictions       uint64 `json:"evictions"`
	RetentionPolicy string `json:"retention_policy"`
}

type systemInfoSection struct {
	Version       string `json:"version"`
	Mode          string `json:"mode"`
	DroppedEvents uint64 `json:"dropped_events"`
}

func percent(part, total uint64) string {
	if total == 0 {
		return "0%"
	}

	return formatRate(float64(part) / float64(total) * 100) //nolint: gomnd
}

func formatRate(value float64) string {
	if value == 0 {
		return "0%"
	}

	return fmt.Sprintf("%.1f%%", math.Round(value*10)/10) //nolint: gomnd
}

func makeStatsResponse(view duplib.StatsView, version string) statsResponse {
	memory := duplib.MemoryStats{}
	if view.Memory != nil {
		memory = *view.Memory
	}

	return statsResponse{
		Status:      "running",
		Timestamp:   time.Now(),
		InstanceID:  view.InstanceID,
		UptimeHours: math.Round(view.Uptime.Hours()*10) / 10, //nolint: gomnd
		Performance: performanceSection{
			MessagesProcessed:   view.MessagesProcessed,
			DuplicatesFound:     view.DuplicatesFound,
			DuplicatesDeleted:   view.MessagesDeleted,
			DeleteFailures:      view.DeleteFailures,
			DuplicateRate:       formatRate(view.DuplicateRate()),
			DetectionEfficiency: percent(view.MessagesDeleted, view.MessagesProcessed),
			AvgResponseTime: fmt.Sprintf("%.2fms",
				float64(view.AvgCheckDuration)/float64(time.Millisecond)),
			SkippedUnsupported:  view.SkippedUnsupported,
			SkippedRedelivery:   view.SkippedRedelivery,
		},
		ContentAnalysis: contentAnalysisSection{
			TypesProcessed:          view.ByContentType,
			DuplicatesByType:        view.DuplicatesByType,
			ForwardedDuplicatesRate: percent(view.ForwardedDuplicates, view.DuplicatesFound),
			ForwardedVsOriginal: forwardedVsOriginal{
				Forwarded: view.ForwardedDuplicates,
				Original:  view.OriginalDuplicates,
			},
			DistinctContentEstimate: view.DistinctEstimate,
		},
		ChatManagement: chatManagementSection{
			ActiveChats:        view.ActiveChats,
			AutoActivatedChats: view.AutoActivatedChats,
			AutoActivations:    view.AutoActivations,
		},
		MemoryStats: memoryStatsSection{
			TotalEntries:    memory.TotalEntries,
			LargestChatSize: memory.LargestChat,
			PerChatLimit:    memory.PerChatLimit,
			Evictions:       view.Evictions,
			RetentionPolicy: fmt.Sprintf("last %d messages per chat", memory.PerChatLimit),
		},
		SystemInfo: systemInfoSection{
			Version: version,
			Mode:    "automatic",
		},
	}
}
