package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/slabounty/rusty-server/internal/logger"
	"github.com/slabounty/rusty-server/internal/server"
	"github.com/slabounty/rusty-server/internal/static"
	"github.com/slabounty/rusty-server/pkg/config"
	"github.com/slabounty/rusty-server/pkg/metrics"
	metricsProm "github.com/slabounty/rusty-server/pkg/metrics/prometheus"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	printConfig := flag.Bool("print-config", false, "Print the default configuration as YAML and exit")
	enableMetrics := flag.Bool("metrics", false, "Enable Prometheus metrics collection")
	flag.Parse()

	if *printConfig {
		out, err := yaml.Marshal(config.GetDefaultConfig())
		if err != nil {
			log.Fatalf("Failed to marshal default config: %v", err)
		}
		fmt.Print(string(out))
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure logger before anything else logs
	logger.SetLevel(cfg.Logging.Level)
	logger.SetFormat(cfg.Logging.Format)
	if err := logger.SetOutput(cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to configure log output: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("rusty-server - static file server")
	logger.Info("Log level set to: %s", cfg.Logging.Level)

	store, err := config.CreateContentStore(ctx, &cfg.Static)
	if err != nil {
		log.Fatalf("Failed to create content store: %v", err)
	}

	resolver := static.NewResolver(store, cfg.Static.Index, cfg.Static.NotFound)

	var httpMetrics metrics.HTTPMetrics
	if *enableMetrics {
		metrics.InitRegistry()
		httpMetrics = metricsProm.NewHTTPMetrics()
		logger.Info("Prometheus metrics enabled")
	}

	logger.Info("Server configuration:")
	logger.Info("  Address: %s:%d", cfg.Server.Host, cfg.Server.Port)
	if cfg.Server.MaxConnections > 0 {
		logger.Info("  Max connections: %d", cfg.Server.MaxConnections)
	} else {
		logger.Info("  Max connections: unlimited")
	}
	logger.Info("  Read timeout: %v", cfg.Server.ReadTimeout)
	logger.Info("  Write timeout: %v", cfg.Server.WriteTimeout)
	logger.Info("  Shutdown timeout: %v", cfg.Server.ShutdownTimeout)
	if cfg.Server.RateLimit > 0 {
		logger.Info("  Rate limit: %d req/s (burst %d)", cfg.Server.RateLimit, cfg.Server.RateBurst)
	}

	srv, err := server.New(cfg.Server, resolver, httpMetrics)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running on port %d. Press Ctrl+C to stop.", cfg.Server.Port)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error: %v", err)
			os.Exit(1)
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error: %v", err)
			os.Exit(1)
		}
		logger.Info("Server stopped")
	}
}
