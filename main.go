package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/agentic-mcp/agentic-mcp-server/internal/app"
	"github.com/agentic-mcp/agentic-mcp-server/internal/config"
	"github.com/agentic-mcp/agentic-mcp-server/internal/logging"
	"github.com/agentic-mcp/agentic-mcp-server/internal/mcpclient"
	"github.com/agentic-mcp/agentic-mcp-server/internal/protocol"
	"github.com/agentic-mcp/agentic-mcp-server/internal/version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	configPath string
	serverURL  string
	timeout    time.Duration
	listenAddr string
	callArgs   string
)

var rootCmd = &cobra.Command{
	Use:           "agentic-mcp",
	Short:         "MCP server that routes tool calls to registered agents",
	Version:       version.Get().String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Serve JSON-RPC over stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cleanup, err := buildRuntime(cmd.Context(), "stdio")
		if err != nil {
			return err
		}
		defer cleanup()
		return rt.ServeStdio(cmd.Context(), os.Stdin, os.Stdout)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST host, JSON-RPC and WebSocket endpoints over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cleanup, err := buildRuntime(cmd.Context(), "host")
		if err != nil {
			return err
		}
		defer cleanup()
		return rt.ServeHTTP(cmd.Context(), listenAddr)
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools advertised by a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		tools, err := newClient().ListTools(ctx)
		if err != nil {
			return fmt.Errorf("list tools: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, t := range tools {
			fmt.Fprintf(out, "%-32s %s\n", t.Name, t.Description)
		}
		return nil
	},
}

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Call a tool on a running server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := protocol.Decode([]byte(callArgs))
		if err != nil {
			return fmt.Errorf("--args must be a JSON object: %w", err)
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		res, err := newClient().CallTool(ctx, args[0], params)
		if err != nil {
			return fmt.Errorf("call %s: %w", args[0], err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Text())
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agent availability on a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		st, err := newClient().AgentStatus(ctx)
		if err != nil {
			return fmt.Errorf("agent status: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "agents: %d  tools: %d\n", st.TotalAgents, st.TotalTools)
		names := make([]string, 0, len(st.Agents))
		for name := range st.Agents {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			a := st.Agents[name]
			state := "available"
			if !a.Available {
				state = "unavailable"
			}
			fmt.Fprintf(out, "  %-12s %-12s %s\n", name, state, strings.Join(a.Tools, ", "))
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		for _, secret := range []*string{&cfg.OpenAI.APIKey, &cfg.Gemini.APIKey, &cfg.Azure.APIKey} {
			if *secret != "" {
				*secret = "***"
			}
		}
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func buildRuntime(ctx context.Context, component string) (*app.Runtime, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, closeLog, err := logging.New(component, logging.Options{Level: cfg.Log.Level, Dir: cfg.Log.Dir, Stderr: true})
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}
	if listenAddr == "" {
		listenAddr = cfg.Addr()
	}
	log.WithFields(logrus.Fields{"name": cfg.Server.Name, "version": cfg.Server.Version}).Info("starting")
	rt, err := app.Build(ctx, cfg, log)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return rt, func() {
		rt.Close()
		closeLog()
	}, nil
}

func newClient() *mcpclient.Client {
	url := serverURL
	if url == "" {
		url = envOr("MCP_SERVER_URL", "http://localhost:8000")
	}
	return mcpclient.New(url, timeout)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $"+config.PathEnv+")")
	for _, c := range []*cobra.Command{toolsCmd, callCmd, statusCmd} {
		c.Flags().StringVar(&serverURL, "url", "", "server base URL (default $MCP_SERVER_URL or http://localhost:8000)")
		c.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "request timeout")
	}
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default SERVER_HOST:SERVER_PORT)")
	callCmd.Flags().StringVar(&callArgs, "args", "{}", "tool arguments as a JSON object")

	rootCmd.AddCommand(stdioCmd, serveCmd, toolsCmd, callCmd, statusCmd, configCmd)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
