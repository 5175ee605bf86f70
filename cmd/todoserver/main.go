package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tasklist/internal/config"
	"tasklist/internal/logging"
	"tasklist/internal/server"
	"tasklist/internal/storage"
)

func main() {
	configPath := flag.String("config", config.ResolveConfigPath(), "path to config file")
	flag.Parse()

	cfg, err := config.LoadOrCreate(*configPath)
	logger := logging.New(os.Stderr, logging.Options{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Prefix:    "todoserver",
		Timestamp: true,
	})
	if err != nil {
		logger.Fatal("failed to load config", "path", *configPath, "err", err)
	}

	dbPath := config.ResolvePath(*configPath, cfg.Server.DBPath)
	store, err := storage.Open(dbPath)
	if err != nil {
		logger.Fatal("failed to open database", "path", dbPath, "err", err)
	}
	defer store.Close()

	srv := server.NewServer(cfg.Server.Addr, server.New(store, logger))
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	logger.Info("listening", "addr", cfg.Server.Addr, "db", dbPath)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
	}
}
