//go:build js && wasm

// Package main is the in-browser alert presenter.
//
// Build with GOOS=js GOARCH=wasm and serve the binary as alerts.wasm next to
// the toolchain's wasm_exec.js. Once the page is ready it renders the alert
// cookie into the #alerts element and deletes the cookie.
package main

import (
	"context"
	"os"

	"github.com/louisbranch/roomalerts/internal/platform/logging"
	"github.com/louisbranch/roomalerts/internal/services/web/platform/alerts"
	"github.com/louisbranch/roomalerts/internal/services/web/platform/browser"
	"go.uber.org/zap"
)

func main() {
	// Stdout is the developer console under wasm_exec.js.
	logger, err := logging.NewWithWriter(logging.Config{Level: "debug", Format: logging.FormatConsole}, "alerts", os.Stdout)
	if err != nil {
		logger = zap.NewNop()
	}

	done := make(chan struct{})
	browser.OnReady(func() {
		defer close(done)
		show(context.Background(), logger)
	})
	<-done
}

func show(ctx context.Context, logger *zap.Logger) {
	container, err := browser.FindContainer(alerts.ContainerID)
	if err != nil {
		logger.Error("resolve alert container", zap.Error(err))
		return
	}
	store, err := browser.NewCookieStore()
	if err != nil {
		logger.Warn("open cookie store", zap.Error(err))
		return
	}
	presenter, err := alerts.NewPresenter(container, store, alerts.WithLogger(logger))
	if err != nil {
		logger.Error("build presenter", zap.Error(err))
		return
	}
	presenter.ShowAlerts(ctx)
}
