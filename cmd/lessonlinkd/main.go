package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"lessonlink/internal/config"
	"lessonlink/internal/daemon"
	"lessonlink/internal/dataset"
	"lessonlink/internal/ipc"
	"lessonlink/internal/logging"
)

func main() {
	configFlag := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", cfg.LogPath()},
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := dataset.Open(cfg)
	if err != nil {
		logger.Error("open snapshot store", logging.Error(err))
		return
	}

	source := dataset.NewHTTPSource(cfg.Source)
	fetcher := dataset.NewFetcher(source, cfg.Source.PageSize, logger)

	d, err := daemon.New(cfg, store, fetcher, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		return
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("lessonlinkd shutting down")
}
