package stats

import (
	"context"
	"net"
	"net/http"

	"github.com/akab00m/dupclean/duplib"
	"github.com/akab00m/dupclean/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unknownActivation = "unknown"

type prometheusProcessor struct {
	chats   map[int64]*chatInfo
	factory *PrometheusFactory
}

func (p prometheusProcessor) activation(chatID int64) string {
	if info, ok := p.chats[chatID]; ok {
		return info.tags[TagActivation]
	}

	return unknownActivation
}

func (p prometheusProcessor) EventChecked(evt duplib.EventChecked) {
	contentType := evt.ContentType.String()

	p.factory.metricCheckedMessages.
		WithLabelValues(contentType, getVerdict(evt.IsDuplicate), p.activation(evt.ChatID())).
		Inc()
	p.factory.metricCheckDuration.Observe(evt.Duration.Seconds())

	if evt.IsDuplicate {
		p.factory.metricDuplicates.
			WithLabelValues(contentType, getOrigin(evt.WasForwarded)).
			Inc()
	}
}

func (p prometheusProcessor) EventSkipped(evt duplib.EventSkipped) {
	p.factory.metricSkipped.WithLabelValues(evt.Reason.String()).Inc()
}

func (p prometheusProcessor) EventEvicted(evt duplib.EventEvicted) {
	p.factory.metricEvictions.Add(float64(evt.Count))
}

func (p prometheusProcessor) EventActivated(evt duplib.EventActivated) {
	if info, ok := p.chats[evt.ChatID()]; ok {
		releaseChatInfo(info)
	}

	info := acquireChatInfo(evt.Reason)
	p.chats[evt.ChatID()] = info

	p.factory.metricActivations.WithLabelValues(info.tags[TagActivation]).Inc()
}

func (p prometheusProcessor) EventDeactivated(evt duplib.EventDeactivated) {
	if info, ok := p.chats[evt.ChatID()]; ok {
		delete(p.chats, evt.ChatID())
		releaseChatInfo(info)
	}

	p.factory.metricDeactivations.Inc()
	p.factory.metricDroppedRecords.Add(float64(evt.DroppedRecords))
}

func (p prometheusProcessor) EventDeleted(evt duplib.EventDeleted) {
	p.factory.metricDeleted.WithLabelValues(evt.ContentType.String()).Inc()
}

func (p prometheusProcessor) EventDeleteFailed(evt duplib.EventDeleteFailed) {
	p.factory.metricDeleteFailures.WithLabelValues(evt.Reason).Inc()
}

func (p prometheusProcessor) EventStoreSize(evt duplib.EventStoreSize) {
	p.factory.metricActiveChats.Set(float64(evt.ActiveChats))
	p.factory.metricStoreEntries.Set(float64(evt.TotalEntries))
	p.factory.metricLargestChat.Set(float64(evt.LargestChat))
}

func (p prometheusProcessor) Shutdown() {
	for k, v := range p.chats {
		releaseChatInfo(v)
		delete(p.chats, k)
	}
}

// PrometheusFactory is a factory of [events.Observer] which collect
// information in a format suitable for Prometheus.
//
// This factory can also serve on a given listener. In that case it starts HTTP
// server with a single endpoint - a Prometheus-compatible scrape output.
type PrometheusFactory struct {
	httpServer *http.Server

	metricCheckedMessages *prometheus.CounterVec
	metricDuplicates      *prometheus.CounterVec
	metricSkipped         *prometheus.CounterVec
	metricActivations     *prometheus.CounterVec
	metricDeleted         *prometheus.CounterVec
	metricDeleteFailures  *prometheus.CounterVec

	metricEvictions      prometheus.Counter
	metricDeactivations  prometheus.Counter
	metricDroppedRecords prometheus.Counter

	metricActiveChats  prometheus.Gauge
	metricStoreEntries prometheus.Gauge
	metricLargestChat  prometheus.Gauge

	metricCheckDuration prometheus.Histogram

	metricBuildInfo *prometheus.GaugeVec
}

// Make builds a new observer.
func (p *PrometheusFactory) Make() events.Observer {
	return prometheusProcessor{
		chats:   make(map[int64]*chatInfo),
		factory: p,
	}
}

// Handler returns an HTTP handler with a scrape output. It is useful if
// metrics have to be served by some other server.
func (p *PrometheusFactory) Handler() http.Handler {
	return p.httpServer.Handler
}

// Serve starts an HTTP server on a given listener.
func (p *PrometheusFactory) Serve(listener net.Listener) error {
	return p.httpServer.Serve(listener) //nolint: wrapcheck
}

// Close stops a factory. Please pay attention that underlying listener
// is not closed.
func (p *PrometheusFactory) Close() error {
	return p.httpServer.Shutdown(context.Background()) //nolint: wrapcheck
}

// NewPrometheus builds an events.ObserverFactory which can serve HTTP
// endpoint with Prometheus scrape data.
func NewPrometheus(metricPrefix, httpPath, version string) *PrometheusFactory { //nolint: funlen
	registry := prometheus.NewPedanticRegistry()
	httpHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	mux := http.NewServeMux()

	mux.Handle(httpPath, httpHandler)

	factory := &PrometheusFactory{
		httpServer: &http.Server{
			Handler: mux,
		},

		metricCheckedMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricCheckedMessages,
			Help:      "A number of checked messages.",
		}, []string{TagContentType, TagVerdict, TagActivation}),
		metricDuplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricDuplicates,
			Help:      "A number of found duplicates.",
		}, []string{TagContentType, TagOrigin}),
		metricSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricSkipped,
			Help:      "A number of messages of active chats which were not checked.",
		}, []string{TagSkipReason}),
		metricActivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricActivations,
			Help:      "A number of chat activations.",
		}, []string{TagActivation}),
		metricDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricDeleted,
			Help:      "A number of deleted duplicates.",
		}, []string{TagContentType}),
		metricDeleteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricDeleteFailures,
			Help:      "A number of duplicates which could not be deleted.",
		}, []string{TagFailureReason}),

		metricEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricEvictions,
			Help:      "A number of records evicted from full chat stores.",
		}),
		metricDeactivations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricDeactivations,
			Help:      "A number of chat deactivations.",
		}),
		metricDroppedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricDroppedRecords,
			Help:      "A number of records dropped on chat deactivation.",
		}),

		metricActiveChats: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      MetricActiveChats,
			Help:      "A number of chats where detection is enabled.",
		}),
		metricStoreEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      MetricStoreEntries,
			Help:      "A total number of records in all chat stores.",
		}),
		metricLargestChat: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      MetricLargestChat,
			Help:      "A number of records in the largest chat store.",
		}),

		metricCheckDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricPrefix,
			Name:      MetricCheckDuration,
			Help:      "Time spent to check a single message.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),

		metricBuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      "build_info",
			Help:      "Build information about dupclean.",
		}, []string{"version"}),
	}

	registry.MustRegister(factory.metricCheckedMessages)
	registry.MustRegister(factory.metricDuplicates)
	registry.MustRegister(factory.metricSkipped)
	registry.MustRegister(factory.metricActivations)
	registry.MustRegister(factory.metricDeleted)
	registry.MustRegister(factory.metricDeleteFailures)

	registry.MustRegister(factory.metricEvictions)
	registry.MustRegister(factory.metricDeactivations)
	registry.MustRegister(factory.metricDroppedRecords)

	registry.MustRegister(factory.metricActiveChats)
	registry.MustRegister(factory.metricStoreEntries)
	registry.MustRegister(factory.metricLargestChat)

	registry.MustRegister(factory.metricCheckDuration)

	registry.MustRegister(factory.metricBuildInfo)
	factory.metricBuildInfo.WithLabelValues(version).Set(1)

	return factory
}
