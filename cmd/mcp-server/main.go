package main

import (
	"context"
	"flag"
	"log"
	"os"
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
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, cleanup, err := logging.New("mcp-server", logging.Options{Level: cfg.Log.Level, Dir: cfg.Log.Dir, Stderr: cfg.Server.Debug})
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

	if err := rt.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Errorf("stdio server error: %v", err)
	}
}
