// Package statusserver is a small HTTP server which tells that the bot is
// alive and shows its statistics. Hosting platforms poll it to keep the
// process running.
package statusserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/akab00m/dupclean/antireplay"
	"github.com/akab00m/dupclean/duplib"
	"github.com/akab00m/dupclean/logger"
	"github.com/yl2chen/cidranger"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second

	bannerText = "Telegram Duplicate Cleaner Bot is running!"
)

// StatsSource gives a statistics snapshot. duplib.Detector implements it.
type StatsSource interface {
	Stats() duplib.StatsView
}

// ReplayGuardSource gives deleter replay guard metrics.
type ReplayGuardSource interface {
	GetMetrics() antireplay.Metrics
}

// DroppedEventsSource counts events which were not delivered to
// observers. events.EventStream implements it.
type DroppedEventsSource interface {
	Dropped() uint64
}

type Opts struct {
	// Source is a mandatory setting.
	Source StatsSource

	// ReplayGuard is optional.
	ReplayGuard ReplayGuardSource

	// Events is optional.
	Events DroppedEventsSource

	// Allowlist restricts /stats to these networks. Empty means no
	// restrictions.
	Allowlist []net.IPNet

	Version string
	Logger  duplib.Logger
}

type Server struct {
	httpServer  *http.Server
	source      StatsSource
	replayGuard ReplayGuardSource
	events      DroppedEventsSource
	allowlist   cidranger.Ranger
	version     string
	logger      duplib.Logger
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Serve(listener net.Listener) error {
	err := s.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}

	return err //nolint: wrapcheck
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx) //nolint: wrapcheck
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(bannerText)) //nolint: errcheck
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.isAllowed(r) {
		s.writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})

		return
	}

	view := s.source.Stats()
	response := makeStatsResponse(view, s.version)

	if s.replayGuard != nil {
		metrics := s.replayGuard.GetMetrics()
		response.ReplayGuard = &metrics
	}

	if s.events != nil {
		response.SystemInfo.DroppedEvents = s.events.Dropped()
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) isAllowed(r *http.Request) bool {
	if s.allowlist == nil {
		return true
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	ok, err := s.allowlist.Contains(ip)
	if err != nil {
		s.logger.BindStr("ip", host).DebugError("cannot check allowlist", err)

		return false
	}

	return ok
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)

	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(value); err != nil {
		s.logger.DebugError("cannot write response", err)
	}
}

func New(opts Opts) (*Server, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("stats source is not defined")
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoopLogger()
	}

	srv := &Server{
		source:      opts.Source,
		replayGuard: opts.ReplayGuard,
		events:      opts.Events,
		version:     opts.Version,
		logger:      log.Named("status"),
	}

	if len(opts.Allowlist) > 0 {
		ranger := cidranger.NewPCTrieRanger()

		for _, ipNet := range opts.Allowlist {
			if err := ranger.Insert(cidranger.NewBasicRangerEntry(ipNet)); err != nil {
				return nil, fmt.Errorf("cannot add %s to allowlist: %w", ipNet.String(), err)
			}
		}

		srv.allowlist = ranger
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/", srv.handleBanner)
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/stats", srv.handleStats)

	srv.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return srv, nil
}
