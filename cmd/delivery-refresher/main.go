package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/BearBump/StoreDash/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("config parse error, %v", err))
	}
	setupLogger(cfg.Dashboard.LogLevel)

	r, err := buildRefresher(cfg, defaultRefresherFactories())
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		err := runRefresherHTTPServer(ctx, refresherHTTPOpts{
			httpAddr:    cfg.Refresher.HTTPAddr,
			swaggerPath: os.Getenv("swaggerPath"),
			refresher:   r,
			cfg:         cfg,
		})
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("refresher http server stopped", "err", err)
		}
	}()

	slog.Info("delivery refresher started", "stores", len(cfg.Refresher.StoreIDs))
	if err := RunRefresher(ctx, cfg, r); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("refresher stopped", "err", err)
		cancel()
		os.Exit(1)
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
