// Package config loads server settings from defaults, an optional YAML file
// and the environment, in that order.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents/mcpproxy"
)

// PathEnv names the variable holding the YAML config path.
const PathEnv = "AGENTIC_MCP_CONFIG"

type Server struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Debug   bool   `json:"debug"`
}

type Log struct {
	Level string `json:"level"`
	Dir   string `json:"dir"`
}

type Ollama struct {
	URL   string `json:"url"`
	Model string `json:"model"`
}

type OpenAI struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
}

type Gemini struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

type Azure struct {
	Endpoint   string `json:"endpoint"`
	APIKey     string `json:"api_key"`
	Deployment string `json:"deployment"`
}

type File struct {
	BasePath          string   `json:"base_path"`
	MaxSize           int64    `json:"max_size"`
	AllowedExtensions []string `json:"allowed_extensions"`
}

// Config is the full server configuration.
type Config struct {
	Server     Server                  `json:"server"`
	Log        Log                     `json:"log"`
	Ollama     Ollama                  `json:"ollama"`
	OpenAI     OpenAI                  `json:"openai"`
	Gemini     Gemini                  `json:"gemini"`
	Azure      Azure                   `json:"azure"`
	File       File                    `json:"file"`
	MCPServers []mcpproxy.ServerConfig `json:"mcp_servers"`

	// AnalysisOrder lists the agents tried by the /analyze endpoint.
	AnalysisOrder []string `json:"analysis_order"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: Server{
			Name:    "Pure Agentic MCP Server",
			Version: "1.0.0",
			Host:    "localhost",
			Port:    8000,
		},
		Log:           Log{Level: "info", Dir: "logs"},
		Ollama:        Ollama{URL: "http://localhost:11434", Model: "llama3.2:latest"},
		OpenAI:        OpenAI{Model: "gpt-4", BaseURL: "https://api.openai.com/v1"},
		Gemini:        Gemini{Model: "gemini-2.0-flash"},
		File:          File{MaxSize: 10 * 1024 * 1024},
		AnalysisOrder: []string{"openai", "ollama", "gemini", "azure"},
	}
}

// Load builds the configuration. An empty path falls back to $AGENTIC_MCP_CONFIG;
// when neither is set no file is read.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if cfg.Server.Debug && os.Getenv("LOG_LEVEL") == "" {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Name, "MCP_SERVER_NAME")
	setString(&c.Server.Version, "MCP_SERVER_VERSION")
	setString(&c.Server.Host, "SERVER_HOST")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Dir, "LOG_DIR")
	setString(&c.Ollama.URL, "OLLAMA_URL")
	setString(&c.Ollama.Model, "OLLAMA_MODEL")
	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.Model, "OPENAI_MODEL")
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Gemini.Model, "GEMINI_MODEL")
	setString(&c.Azure.Endpoint, "AZURE_OPENAI_ENDPOINT")
	setString(&c.Azure.APIKey, "AZURE_OPENAI_API_KEY")
	setString(&c.Azure.Deployment, "AZURE_OPENAI_DEPLOYMENT")
	setString(&c.File.BasePath, "FILE_BASE_PATH")

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DEBUG: %w", err)
		}
		c.Server.Debug = debug
	}
	if v := os.Getenv("FILE_MAX_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("FILE_MAX_SIZE: %w", err)
		}
		c.File.MaxSize = size
	}
	if v := os.Getenv("FILE_ALLOWED_EXTENSIONS"); v != "" {
		c.File.AllowedExtensions = splitList(v)
	}
	if v := os.Getenv("ANALYSIS_ORDER"); v != "" {
		c.AnalysisOrder = splitList(v)
	}
	return nil
}

// Addr is the host:port the HTTP host listens on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
