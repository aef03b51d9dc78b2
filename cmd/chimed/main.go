// Command chimed is the watcher daemon: it holds a subscription to the
// configured topic, archives every received message, and optionally bridges
// messages to Redis while serving Prometheus metrics.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chime/internal/archive"
	"chime/internal/config"
	"chime/internal/logging"
	"chime/internal/watcher"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	var store *archive.Store
	if cfg.Archive.Enabled {
		store, err = archive.Open(cfg)
		if err != nil {
			logger.Error("open archive store", logging.Error(err))
			os.Exit(1)
		}
	}

	w, err := watcher.New(cfg, store, logger)
	if err != nil {
		logger.Error("create watcher", logging.Error(err))
		_ = store.Close()
		os.Exit(1)
	}
	defer w.Close()

	if err := w.Start(ctx); err != nil {
		logger.Error("start watcher", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("chimed shutting down")
}
