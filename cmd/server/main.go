package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/daiw/music-brain/config"
	"github.com/daiw/music-brain/internal/server"
)

func main() {
	port := flag.String("port", "8080", "Server port")
	configPath := flag.String("config", "./config/config.yaml", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	srv := server.New(cfg)

	slog.Info("Starting arrangement API server", "port", *port)
	if err := srv.Start(*port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
