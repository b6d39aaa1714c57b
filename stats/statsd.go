package stats

import (
	"fmt"
	"strings"

	"github.com/akab00m/dupclean/duplib"
	"github.com/akab00m/dupclean/events"
	statsd "github.com/smira/go-statsd"
)

type statsdProcessor struct {
	chats  map[int64]*chatInfo
	client *statsd.Client
}

func (s statsdProcessor) activationTag(chatID int64) statsd.Tag {
	if info, ok := s.chats[chatID]; ok {
		return info.T(TagActivation)
	}

	return statsd.StringTag(TagActivation, unknownActivation)
}

func (s statsdProcessor) EventChecked(evt duplib.EventChecked) {
	contentType := statsd.StringTag(TagContentType, evt.ContentType.String())

	s.client.Incr(MetricCheckedMessages, 1,
		contentType,
		statsd.StringTag(TagVerdict, getVerdict(evt.IsDuplicate)),
		s.activationTag(evt.ChatID()))
	s.client.PrecisionTiming(MetricCheckDuration, evt.Duration)

	if evt.IsDuplicate {
		s.client.Incr(MetricDuplicates, 1,
			contentType,
			statsd.StringTag(TagOrigin, getOrigin(evt.WasForwarded)))
	}
}

func (s statsdProcessor) EventSkipped(evt duplib.EventSkipped) {
	s.client.Incr(MetricSkipped, 1, statsd.StringTag(TagSkipReason, evt.Reason.String()))
}

func (s statsdProcessor) EventEvicted(evt duplib.EventEvicted) {
	s.client.Incr(MetricEvictions, int64(evt.Count))
}

func (s statsdProcessor) EventActivated(evt duplib.EventActivated) {
	if info, ok := s.chats[evt.ChatID()]; ok {
		releaseChatInfo(info)
	}

	info := acquireChatInfo(evt.Reason)
	s.chats[evt.ChatID()] = info

	s.client.Incr(MetricActivations, 1, info.T(TagActivation))
}

func (s statsdProcessor) EventDeactivated(evt duplib.EventDeactivated) {
	if info, ok := s.chats[evt.ChatID()]; ok {
		delete(s.chats, evt.ChatID())
		releaseChatInfo(info)
	}

	s.client.Incr(MetricDeactivations, 1)
	s.client.Incr(MetricDroppedRecords, int64(evt.DroppedRecords))
}

func (s statsdProcessor) EventDeleted(evt duplib.EventDeleted) {
	s.client.Incr(MetricDeleted, 1, statsd.StringTag(TagContentType, evt.ContentType.String()))
}

func (s statsdProcessor) EventDeleteFailed(evt duplib.EventDeleteFailed) {
	s.client.Incr(MetricDeleteFailures, 1, statsd.StringTag(TagFailureReason, evt.Reason))
}

func (s statsdProcessor) EventStoreSize(evt duplib.EventStoreSize) {
	s.client.Gauge(MetricActiveChats, int64(evt.ActiveChats))
	s.client.Gauge(MetricStoreEntries, int64(evt.TotalEntries))
	s.client.Gauge(MetricLargestChat, int64(evt.LargestChat))
}

func (s statsdProcessor) Shutdown() {
	for k, v := range s.chats {
		releaseChatInfo(v)
		delete(s.chats, k)
	}
}

// StatsdFactory is a factory of [events.Observer] which sends
// information to StatsD.
//
// All observers share the same client.
type StatsdFactory struct {
	client *statsd.Client
}

// Make builds a new observer.
func (s StatsdFactory) Make() events.Observer {
	return statsdProcessor{
		chats:  make(map[int64]*chatInfo),
		client: s.client,
	}
}

// Close flushes and stops a client.
func (s StatsdFactory) Close() error {
	return s.client.Close() //nolint: wrapcheck
}

// NewStatsd builds an events.ObserverFactory that sends events to
// statsd.
//
// Valid tagFormats are 'datadog' and 'influxdb'.
func NewStatsd(address string, logger duplib.Logger, metricPrefix, tagFormat string) (StatsdFactory, error) {
	if !strings.HasSuffix(metricPrefix, ".") {
		metricPrefix += "."
	}

	options := []statsd.Option{
		statsd.MetricPrefix(metricPrefix),
		statsd.Logger(logger.Named("statsd")),
	}

	switch strings.ToLower(tagFormat) {
	case "datadog":
		options = append(options, statsd.TagStyle(statsd.TagFormatDatadog))
	case "influxdb":
		options = append(options, statsd.TagStyle(statsd.TagFormatInfluxDB))
	default:
		return StatsdFactory{}, fmt.Errorf("unknown tag format %s", tagFormat)
	}

	return StatsdFactory{
		client: statsd.NewClient(address, options...),
	}, nil
}
