package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/store"
	"stock-research-agent/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	must(logger.Init())
	must(trace.Init())

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	must(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap(ctx, cfg)
	must(err)
	defer app.Close()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() { errc <- app.Server.Start() }()
	app.Scheduler.Start()

	select {
	case err := <-errc:
		must(err)
	case sig := <-sigc:
		logger.Info(ctx, "shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	app.Scheduler.Stop()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(ctx, "server shutdown failed", err)
	}
	if err := trace.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(ctx, "trace shutdown failed", err)
	}
}
