// cmd/discord/main.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chancedrigor/ParakeetBot/internal/config"
	"github.com/chancedrigor/ParakeetBot/internal/discord"
	"github.com/chancedrigor/ParakeetBot/internal/logging"
	"github.com/chancedrigor/ParakeetBot/internal/storage"
	v "github.com/chancedrigor/ParakeetBot/internal/version"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Debug, cfg.Silent)
	slog.Info("starting bot", "app", v.AppName, "version", v.Version)

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		slog.Error("failed to open storage", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			slog.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				slog.Error("metrics server error", "err", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- discord.StartBot(ctx, cfg, store)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		slog.Info("received signal, shutting down", "signal", s.String())
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			slog.Error("discord bot error", "err", err)
			os.Exit(1)
		}
	}
}
