// Package web parses web service flags and launches the service.
package web

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/roomalerts/internal/platform/cmd"
	"github.com/louisbranch/roomalerts/internal/platform/logging"
	"github.com/louisbranch/roomalerts/internal/platform/otel"
	"github.com/louisbranch/roomalerts/internal/services/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr            string `env:"ROOMALERTS_WEB_HTTP_ADDR" envDefault:"localhost:8086"`
	CookieName          string `env:"ROOMALERTS_WEB_ALERT_COOKIE" envDefault:"exc"`
	CookiePath          string `env:"ROOMALERTS_WEB_COOKIE_PATH" envDefault:"/"`
	CookieDomain        string `env:"ROOMALERTS_WEB_COOKIE_DOMAIN"`
	StaticDir           string `env:"ROOMALERTS_WEB_STATIC_DIR"`
	ClientAlerts        bool   `env:"ROOMALERTS_WEB_CLIENT_ALERTS"`
	TrustForwardedProto bool   `env:"ROOMALERTS_WEB_TRUST_FORWARDED_PROTO"`
	Title               string `env:"ROOMALERTS_WEB_TITLE" envDefault:"Room"`

	Log       logging.Config
	Telemetry otel.Config
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.CookieName, "alert-cookie", cfg.CookieName, "Cookie carrying one-time alerts")
	fs.StringVar(&cfg.CookiePath, "cookie-path", cfg.CookiePath, "Path attribute used when expiring the alert cookie")
	fs.StringVar(&cfg.CookieDomain, "cookie-domain", cfg.CookieDomain, "Domain attribute used when expiring the alert cookie")
	fs.StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "Directory served under /static/")
	fs.BoolVar(&cfg.ClientAlerts, "client-alerts", cfg.ClientAlerts, "Render alerts in the browser with the WebAssembly presenter")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "Honor X-Forwarded-Proto for Secure cookies")
	fs.StringVar(&cfg.Title, "title", cfg.Title, "Page title")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Log encoding (json, console)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the web server.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.Log, entrypoint.ServiceWeb)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceWeb, cfg.Telemetry, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		server, err := web.NewServer(web.Config{
			HTTPAddr:            cfg.HTTPAddr,
			CookieName:          cfg.CookieName,
			CookiePath:          cfg.CookiePath,
			CookieDomain:        cfg.CookieDomain,
			StaticDir:           cfg.StaticDir,
			ClientAlerts:        cfg.ClientAlerts,
			TrustForwardedProto: cfg.TrustForwardedProto,
			Title:               cfg.Title,
		}, web.Dependencies{Logger: logger, Registry: registry})
		if err != nil {
			return fmt.Errorf("init web server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}
