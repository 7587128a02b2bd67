package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/louisbranch/roomalerts/internal/platform/timeouts"
	"github.com/louisbranch/roomalerts/internal/services/web/platform/alerts"
	"github.com/louisbranch/roomalerts/internal/services/web/platform/requestmeta"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Config defines the inputs for the web server.
type Config struct {
	HTTPAddr string
	// CookieName is the alert cookie; defaults to alerts.CookieName.
	CookieName string
	// CookiePath and CookieDomain must match the attributes the producer set
	// on the alert cookie. CookiePath defaults to "/".
	CookiePath   string
	CookieDomain string
	// StaticDir is served under /static/ when set.
	StaticDir string
	// ClientAlerts defers alert rendering to the WebAssembly presenter.
	ClientAlerts        bool
	TrustForwardedProto bool
	Title               string
}

// Dependencies are the shared collaborators of the web handler.
type Dependencies struct {
	Logger *zap.Logger
	// Registry receives the alert metrics and backs /metrics. A fresh
	// registry is created when nil.
	Registry *prometheus.Registry
}

// Server hosts the web HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	listener   net.Listener
	logger     *zap.Logger
}

func (c Config) normalized() Config {
	c.HTTPAddr = strings.TrimSpace(c.HTTPAddr)
	c.CookieName = strings.TrimSpace(c.CookieName)
	if c.CookieName == "" {
		c.CookieName = alerts.CookieName
	}
	c.CookiePath = strings.TrimSpace(c.CookiePath)
	if c.CookiePath == "" {
		c.CookiePath = "/"
	}
	c.CookieDomain = strings.TrimSpace(c.CookieDomain)
	c.StaticDir = strings.TrimSpace(c.StaticDir)
	return c
}

func (c Config) schemePolicy() requestmeta.SchemePolicy {
	return requestmeta.SchemePolicy{TrustForwardedProto: c.TrustForwardedProto}
}

// NewServer builds the server and binds its listener.
func NewServer(config Config, deps Dependencies) (*Server, error) {
	config = config.normalized()
	if config.HTTPAddr == "" {
		return nil, errors.New("http address is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	deps.Logger = logger
	handler, err := NewHandler(config, deps)
	if err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", config.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", config.HTTPAddr, err)
	}
	return &Server{
		httpAddr: listener.Addr().String(),
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		listener: listener,
		logger:   logger,
	}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.httpAddr
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	s.logger.Info("web listening", zap.String("addr", s.httpAddr))
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the listener when the server was never started.
func (s *Server) Close() {
	if s == nil || s.listener == nil {
		return
	}
	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("close listener", zap.Error(err))
	}
}
