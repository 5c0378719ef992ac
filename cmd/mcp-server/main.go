// cmd/mcp-server/main.go — Standalone HTTP MCP server for symdiff
//
// Exposes the symdiff tools as an HTTP endpoint for AI agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server -port 8080
//	go run ./cmd/mcp-server -config symdiff.yaml
//
// Tool call endpoint: POST /tool
// Derive endpoint:    POST /derive
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Metrics endpoint:   GET  /metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/njchilds90/symdiff/internal/config"
	"github.com/njchilds90/symdiff/internal/logging"
	"github.com/njchilds90/symdiff/internal/server"
)

func main() {
	configPath := flag.String("config", "", "YAML or TOML config file (default: SYMDIFF_* environment)")
	port := flag.String("port", "", "Port to listen on, overrides the config")
	dev := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dev {
		cfg.Logging.Development = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
	logger.Info("symdiff MCP server",
		zap.String("addr", cfg.Addr()),
		zap.String("variable", cfg.Engine.Variable),
		zap.Int("max_passes", cfg.Engine.MaxPasses),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, logger).Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
