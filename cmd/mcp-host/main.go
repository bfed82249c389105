package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/agentic-mcp/agentic-mcp-server/internal/app"
	"github.com/agentic-mcp/agentic-mcp-server/internal/config"
	"github.com/agentic-mcp/agentic-mcp-server/internal/logging"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "YAML config file (default $"+config.PathEnv+")")
	addr := flag.String("http", "", "HTTP listen address (default SERVER_HOST:SERVER_PORT)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *addr == "" {
		*addr = cfg.Addr()
	}
	logger, cleanup, err := logging.New("mcp-host", logging.Options{Level: cfg.Log.Level, Dir: cfg.Log.Dir, Stderr: true})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("build registry: %v", err)
	}
	defer rt.Close()

	if err := rt.ServeHTTP(ctx, *addr); err != nil {
		logger.Errorf("http host error: %v", err)
	}
}
