package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tasklist/internal/api"
	"tasklist/internal/config"
	"tasklist/internal/logging"
	"tasklist/internal/tasklist"
	"tasklist/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code.
func run(args []string) int {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	configPath := fs.String("config", config.ResolveConfigPath(), "path to config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	firstLaunch := false
	if _, err := os.Stat(*configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		return 1
	}

	logger, logFile, err := logging.OpenFile(config.ResolvePath(*configPath, cfg.LogFile), logging.Options{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Prefix:    "todo",
		Timestamp: true,
	})
	if err != nil {
		fmt.Printf("failed to open log: %v\n", err)
		return 1
	}
	defer logFile.Close()

	backend, err := api.New(cfg.APIURL,
		api.WithTimeout(cfg.RequestTimeout.Duration),
		api.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create api client", "url", cfg.APIURL, "err", err)
		fmt.Printf("failed to create api client: %v\n", err)
		return 1
	}
	client := tasklist.New(backend,
		tasklist.WithNotificationTTL(cfg.NotificationTTL.Duration),
		tasklist.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "api", cfg.APIURL, "config", *configPath)
	if err := ui.Run(ctx, client, cfg, logger, *configPath, firstLaunch); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("program exited", "err", err)
		fmt.Printf("error running program: %v\n", err)
		return 1
	}
	return 0
}
