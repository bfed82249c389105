// Package app assembles the registry and runs the transports from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
	"github.com/agentic-mcp/agentic-mcp-server/internal/agents/azure"
	"github.com/agentic-mcp/agentic-mcp-server/internal/agents/file"
	"github.com/agentic-mcp/agentic-mcp-server/internal/agents/gemini"
	"github.com/agentic-mcp/agentic-mcp-server/internal/agents/mcpproxy"
	"github.com/agentic-mcp/agentic-mcp-server/internal/agents/ollama"
	"github.com/agentic-mcp/agentic-mcp-server/internal/agents/openai"
	"github.com/agentic-mcp/agentic-mcp-server/internal/config"
	"github.com/agentic-mcp/agentic-mcp-server/internal/host"
	"github.com/agentic-mcp/agentic-mcp-server/internal/mcp"
	"github.com/agentic-mcp/agentic-mcp-server/internal/registry"
)

const shutdownTimeout = 10 * time.Second

type namedAgent struct {
	name  string
	agent agents.Agent
}

// Runtime is a populated registry plus the resources backing it.
type Runtime struct {
	Registry *registry.Registry
	Info     mcp.ServerInfo

	cfg     config.Config
	log     *logrus.Entry
	proxies []*mcpproxy.Agent
}

// Build constructs every configured agent and registers them in a fixed order:
// file, openai, ollama, gemini, azure, then external MCP servers. Probing runs
// concurrently; a failed external server is logged and skipped.
func Build(ctx context.Context, cfg config.Config, log *logrus.Entry) (*Runtime, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	fa, err := file.New(file.Config{
		BasePath:          cfg.File.BasePath,
		MaxSize:           cfg.File.MaxSize,
		AllowedExtensions: cfg.File.AllowedExtensions,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("file agent: %w", err)
	}

	builtins := make([]namedAgent, 5)
	builtins[0] = namedAgent{file.Name, fa}
	proxies := make([]*mcpproxy.Agent, len(cfg.MCPServers))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		builtins[1] = namedAgent{openai.Name, openai.New(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		}, log)}
		return nil
	})
	g.Go(func() error {
		builtins[2] = namedAgent{ollama.Name, ollama.New(gctx, ollama.Config{URL: cfg.Ollama.URL, Model: cfg.Ollama.Model}, log)}
		return nil
	})
	g.Go(func() error {
		builtins[3] = namedAgent{gemini.Name, gemini.New(gctx, gemini.Config{APIKey: cfg.Gemini.APIKey, Model: cfg.Gemini.Model}, log)}
		return nil
	})
	g.Go(func() error {
		builtins[4] = namedAgent{azure.Name, azure.New(azure.Config{
			Endpoint:   cfg.Azure.Endpoint,
			APIKey:     cfg.Azure.APIKey,
			Deployment: cfg.Azure.Deployment,
		}, log)}
		return nil
	})
	for i, sc := range cfg.MCPServers {
		g.Go(func() error {
			p, err := mcpproxy.Start(ctx, sc, log)
			if err != nil {
				log.WithError(err).WithField("agent", sc.Name).Error("failed to start mcp server")
				return nil
			}
			proxies[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rt := &Runtime{
		Registry: registry.New(log.WithField("component", "registry")),
		Info: mcp.ServerInfo{
			Name:        cfg.Server.Name,
			Version:     cfg.Server.Version,
			Description: "Agentic MCP server routing tool calls to registered agents",
		},
		cfg: cfg,
		log: log,
	}
	for _, b := range builtins {
		rt.Registry.Register(b.name, b.agent)
	}
	for _, p := range proxies {
		if p == nil {
			continue
		}
		rt.proxies = append(rt.proxies, p)
		rt.Registry.Register(p.Name(), p)
	}

	st := rt.Registry.Status()
	for name, a := range st.Agents {
		log.WithFields(logrus.Fields{"agent": name, "available": a.Available, "tools": a.ToolCount}).Info("agent status")
	}
	log.WithFields(logrus.Fields{"agents": st.TotalAgents, "tools": st.TotalTools}).Info("registry ready")
	return rt, nil
}

// Close shuts down external MCP sessions.
func (rt *Runtime) Close() {
	for _, p := range rt.proxies {
		if err := p.Close(); err != nil {
			rt.log.WithError(err).WithField("agent", p.Name()).Warn("close mcp session")
		}
	}
}

// ServeStdio runs the newline-delimited JSON-RPC transport until in is exhausted.
func (rt *Runtime) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	server := mcp.NewServer(rt.Registry, rt.Info, rt.log.WithField("transport", "stdio"))
	return mcp.ServeStdio(ctx, server, in, out)
}

// ServeHTTP runs the host on addr until ctx is cancelled, then shuts down gracefully.
func (rt *Runtime) ServeHTTP(ctx context.Context, addr string) error {
	h := host.New(rt.Registry, host.Options{
		Info:          rt.Info,
		AnalysisOrder: rt.cfg.AnalysisOrder,
		Log:           rt.log.WithField("transport", "http"),
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.log.WithField("addr", addr).Info("http host listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http host: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		rt.log.Info("shutting down http host")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
