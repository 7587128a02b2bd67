package web

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"github.com/louisbranch/roomalerts/internal/services/web/platform/alertcookie"
	"github.com/louisbranch/roomalerts/internal/services/web/platform/alerts"
	"github.com/louisbranch/roomalerts/internal/services/web/platform/alerts/domnode"
	"github.com/louisbranch/roomalerts/internal/services/web/platform/httpx"
	"github.com/louisbranch/roomalerts/internal/services/web/templates"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const staticPrefix = "/static/"

type handler struct {
	config  Config
	logger  *zap.Logger
	metrics *alerts.Metrics
}

// NewHandler creates the HTTP handler for the room page.
func NewHandler(config Config, deps Dependencies) (http.Handler, error) {
	config = config.normalized()
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics, err := alerts.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("register alert metrics: %w", err)
	}
	h := &handler{config: config, logger: logger, metrics: metrics}

	mux := http.NewServeMux()
	if config.StaticDir != "" {
		info, err := os.Stat(config.StaticDir)
		if err != nil {
			return nil, fmt.Errorf("resolve static dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("static dir %q is not a directory", config.StaticDir)
		}
		mux.Handle(staticPrefix, http.StripPrefix(staticPrefix, http.FileServerFS(os.DirFS(config.StaticDir))))
	}
	mux.Handle("/metrics", httpx.RequireMethod(http.MethodGet)(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	mux.Handle("/healthz", httpx.RequireMethod(http.MethodGet)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = httpx.WriteText(w, http.StatusOK, "ok")
	})))
	mux.Handle("/", httpx.RequireMethod(http.MethodGet)(http.HandlerFunc(h.handlePage)))

	return httpx.Chain(mux,
		httpx.RequestID(),
		httpx.AccessLog(logger),
		httpx.RecoverPanic(logger),
	), nil
}

func (h *handler) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	logger := h.logger.With(zap.String("request_id", r.Header.Get(httpx.RequestIDHeader)))

	var shell bytes.Buffer
	page := templates.PageContext{
		Title:        h.config.Title,
		ContainerID:  alerts.ContainerID,
		ClientAlerts: h.config.ClientAlerts,
		StaticPrefix: staticPrefix,
	}
	if err := templates.Page(page).Render(r.Context(), &shell); err != nil {
		logger.Error("render page shell", zap.Error(err))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	if h.config.ClientAlerts {
		_ = httpx.WriteHTML(w, http.StatusOK, shell.Bytes())
		return
	}

	body, err := h.presentAlerts(w, r, &shell, logger)
	if err != nil {
		logger.Error("present alerts", zap.Error(err))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	_ = httpx.WriteHTML(w, http.StatusOK, body)
}

// presentAlerts consumes the alert cookie into the page document. Set-Cookie
// headers are written to w before any body.
func (h *handler) presentAlerts(w http.ResponseWriter, r *http.Request, shell *bytes.Buffer, logger *zap.Logger) ([]byte, error) {
	doc, err := html.Parse(shell)
	if err != nil {
		return nil, fmt.Errorf("parse page shell: %w", err)
	}
	container, err := domnode.Find(doc, alerts.ContainerID)
	if err != nil {
		return nil, err
	}
	store := alertcookie.New(w, r, alertcookie.Options{
		Policy: h.config.schemePolicy(),
		Path:   h.config.CookiePath,
		Domain: h.config.CookieDomain,
	})
	presenter, err := alerts.NewPresenter(container, store,
		alerts.WithCookieName(h.config.CookieName),
		alerts.WithLogger(logger),
		alerts.WithMetrics(h.metrics),
	)
	if err != nil {
		return nil, err
	}
	presenter.ShowAlerts(r.Context())

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return out.Bytes(), nil
}
