package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qualitivate/internal/config"
	"qualitivate/internal/scheduler"
	"qualitivate/internal/server"
	"qualitivate/internal/storage"
	"qualitivate/internal/storage/providers"
	httptransport "qualitivate/internal/transport/http"
)

func main() {
	cfg := config.MustLoad()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := storage.InitDB(cfg.DatabaseUrl)
	if err != nil {
		slog.Error("database connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	allProviders := providers.New(db)

	interval := time.Duration(cfg.Scheduler.IntervalSeconds) * time.Second
	scheduler.NewSurveyScheduler(allProviders.SurveyProvider, interval).Start(ctx)

	router := httptransport.Router(allProviders, cfg)

	addr := ":" + cfg.Server.Port
	slog.Info("listening", "addr", addr, "env", cfg.Env)
	if err := server.Start(ctx, addr, cfg.Server.AllowedOrigins, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
