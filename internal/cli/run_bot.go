package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/akab00m/dupclean/antireplay"
	"github.com/akab00m/dupclean/bot"
	"github.com/akab00m/dupclean/duplib"
	"github.com/akab00m/dupclean/events"
	"github.com/akab00m/dupclean/internal/config"
	"github.com/akab00m/dupclean/internal/statusserver"
	"github.com/akab00m/dupclean/internal/utils"
	"github.com/akab00m/dupclean/logger"
	"github.com/akab00m/dupclean/network"
	"github.com/akab00m/dupclean/stats"
	"github.com/rs/zerolog"
)

func makeLogger(conf *config.Config) duplib.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerolog.TimestampFieldName = "timestamp"
	zerolog.LevelFieldName = "level"

	if conf.Debug.Get(false) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	baseLogger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Logger()

	return logger.NewZeroLogger(baseLogger)
}

func makeNetwork(conf *config.Config, version string) (*network.Network, error) {
	tcpTimeout := conf.Network.Timeout.TCP.Get(network.DefaultTimeout)
	httpTimeout := conf.Network.Timeout.HTTP.Get(network.DefaultHTTPTimeout)
	userAgent := network.DefaultUserAgent + "/" + version

	baseDialer, err := network.NewDefaultDialer(tcpTimeout)
	if err != nil {
		return nil, fmt.Errorf("cannot build a default dialer: %w", err)
	}

	if len(conf.Network.Proxies) == 0 {
		return network.NewNetwork(baseDialer, userAgent, httpTimeout) //nolint: wrapcheck
	}

	proxyDialers := make([]network.Dialer, 0, len(conf.Network.Proxies))

	for _, v := range conf.Network.Proxies {
		value, err := network.NewProxyDialer(baseDialer, v.Get(nil))
		if err != nil {
			return nil, fmt.Errorf("cannot build socks5 dialer: %w", err)
		}

		proxyDialers = append(proxyDialers, value)
	}

	dialer, err := network.NewFailoverDialer(proxyDialers)
	if err != nil {
		return nil, fmt.Errorf("cannot build failover dialer: %w", err)
	}

	return network.NewNetwork(dialer, userAgent, httpTimeout) //nolint: wrapcheck
}

type closer func() error

func makeEventStream(conf *config.Config, log duplib.Logger, version string) (events.EventStream, []closer, error) {
	factories := make([]events.ObserverFactory, 0, 2) //nolint: gomnd
	closers := []closer{}

	if conf.Stats.StatsD.Enabled.Get(false) {
		statsdFactory, err := stats.NewStatsd(
			conf.Stats.StatsD.Address.Get(""),
			log.Named("statsd"),
			conf.Stats.StatsD.MetricPrefix.Get(stats.DefaultMetricPrefix),
			conf.Stats.StatsD.TagFormat.Get(stats.DefaultStatsdTagFormat))
		if err != nil {
			return events.EventStream{}, nil, fmt.Errorf("cannot build statsd observer: %w", err)
		}

		factories = append(factories, statsdFactory.Make)
		closers = append(closers, statsdFactory.Close)
	}

	if conf.Stats.Prometheus.Enabled.Get(false) {
		prometheus := stats.NewPrometheus(
			conf.Stats.Prometheus.MetricPrefix.Get(stats.DefaultMetricPrefix),
			conf.Stats.Prometheus.HTTPPath.Get("/metrics"),
			version,
		)

		listener, err := utils.NewListener(conf.Stats.Prometheus.BindTo.Get(""))
		if err != nil {
			return events.EventStream{}, nil, fmt.Errorf("cannot start a listener for prometheus: %w", err)
		}

		go func() {
			if err := prometheus.Serve(listener); err != nil {
				log.WarningError("prometheus endpoint has stopped", err)
			}
		}()

		factories = append(factories, prometheus.Make)
		closers = append(closers, prometheus.Close)
	}

	return events.NewEventStream(factories), closers, nil
}

func makeReplayGuard(conf *config.Config) *antireplay.StableBloomFilter {
	if !conf.Deleter.ReplayGuard.Enabled.Get(false) {
		return nil
	}

	return antireplay.NewStableBloomFilter(
		conf.Deleter.ReplayGuard.MaxSize.Get(antireplay.DefaultStableBloomFilterMaxSize),
		conf.Deleter.ReplayGuard.ErrorRate.Get(antireplay.DefaultStableBloomFilterErrorRate),
	)
}

func makeStatusServer(conf *config.Config,
	detector *duplib.Detector,
	replayGuard *antireplay.StableBloomFilter,
	eventStream events.EventStream,
	log duplib.Logger,
	version string,
) (*statusserver.Server, error) {
	allowlist := make([]net.IPNet, 0, len(conf.Status.Allowlist))

	for _, v := range conf.Status.Allowlist {
		if ipNet := v.Get(nil); ipNet != nil {
			allowlist = append(allowlist, *ipNet)
		}
	}

	opts := statusserver.Opts{
		Source:    detector,
		Events:    eventStream,
		Allowlist: allowlist,
		Version:   version,
		Logger:    log,
	}

	if replayGuard != nil {
		opts.ReplayGuard = replayGuard
	}

	return statusserver.New(opts) //nolint: wrapcheck
}

func runBot(conf *config.Config, version string) error { //nolint: funlen, cyclop
	log := makeLogger(conf)

	log.BindStr("configuration", conf.String()).Debug("configuration")

	eventStream, closers, err := makeEventStream(conf, log, version)
	if err != nil {
		return err
	}

	defer func() {
		eventStream.Shutdown()

		for _, fn := range closers {
			fn() //nolint: errcheck
		}
	}()

	aggregator := duplib.NewStatsAggregator()
	registry := duplib.NewStoreRegistry(duplib.StoreRegistryOpts{
		Capacity:    conf.Detector.Capacity.Get(duplib.DefaultChatStoreCapacity),
		Retention:   conf.Detector.Retention.Get(0),
		Recorder:    aggregator,
		EventStream: eventStream,
		Logger:      log,
	})

	detector, err := duplib.NewDetector(duplib.DetectorOpts{
		Registry:       registry,
		Stats:          aggregator,
		IncludeCaption: conf.Detector.IncludeCaptions.Get(false),
		EventStream:    eventStream,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("cannot create detector: %w", err)
	}

	ntw, err := makeNetwork(conf, version)
	if err != nil {
		return fmt.Errorf("cannot build network: %w", err)
	}

	replayGuard := makeReplayGuard(conf)

	opts := bot.Opts{
		Token:                 conf.BotToken.Get(""),
		HTTPClient:            ntw.MakeHTTPClient(nil),
		Detector:              detector,
		APIEndpoint:           conf.Telegram.APIEndpoint.Get(""),
		EventStream:           eventStream,
		Logger:                log,
		PollingTimeout:        conf.Telegram.PollingTimeout.Get(bot.DefaultPollingTimeout),
		Workers:               conf.Telegram.Workers.Get(0),
		DeleteConcurrency:     conf.Deleter.Concurrency.Get(bot.DefaultDeleteConcurrency),
		DeletePerSecond:       conf.Deleter.PerSecond.Get(bot.DefaultDeletePerSecond),
		DeleteBurst:           conf.Deleter.Burst.Get(bot.DefaultDeleteBurst),
		MaxErrorsPerChat:      conf.Deleter.MaxErrorsPerChat.Get(bot.DefaultMaxErrorsPerChat),
		RetryAttempts:         conf.Deleter.RetryAttempts.Get(bot.DefaultRetryAttempts),
		SweepInterval:         conf.Detector.SweepInterval.Get(bot.DefaultSweepInterval),
		StoreSizeInterval:     bot.DefaultStoreSizeInterval,
		AdminOnly:             conf.Telegram.AdminOnly.Get(false),
		ProcessBotMessages:    !conf.Telegram.IgnoreBots.Get(true),
		DisableAutoActivation: !conf.Telegram.AutoActivate.Get(true),
		DisableWelcomeMessage: !conf.Telegram.WelcomeMessage.Get(true),
	}

	if replayGuard != nil {
		opts.ReplayGuard = replayGuard
	}

	if conf.Status.Enabled.Get(false) {
		statusServer, err := makeStatusServer(conf, detector, replayGuard, eventStream, log, version)
		if err != nil {
			return fmt.Errorf("cannot build status server: %w", err)
		}

		listener, err := utils.NewListener(conf.Status.BindTo.Get(""))
		if err != nil {
			return fmt.Errorf("cannot start a listener for status server: %w", err)
		}

		go func() {
			if err := statusServer.Serve(listener); err != nil {
				log.WarningError("status server has stopped", err)
			}
		}()

		defer statusServer.Shutdown() //nolint: errcheck

		log.BindStr("bind_to", listener.Addr().String()).Info("Status server has been started")
	}

	dupBot, err := bot.NewBot(opts)
	if err != nil {
		return fmt.Errorf("cannot create a bot: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)

	go func() {
		errChan <- dupBot.Run()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err = <-errChan:
	}

	dupBot.Shutdown()

	if err != nil {
		return fmt.Errorf("bot has stopped: %w", err)
	}

	return nil
}
