// Package file exposes local filesystem operations as tools.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
	"github.com/agentic-mcp/agentic-mcp-server/internal/protocol"
)

// Name is the registry name of the file agent.
const Name = "file"

// DefaultMaxSize caps file_read when no limit is configured.
const DefaultMaxSize int64 = 10 * 1024 * 1024

// Config controls where the agent operates and what it may touch.
type Config struct {
	BasePath          string
	MaxSize           int64
	AllowedExtensions []string
}

// Agent serves the file_* tools. It is always available.
type Agent struct {
	base    string
	maxSize int64
	allowed map[string]bool
	log     *logrus.Entry
}

// New resolves the base path and builds the agent.
func New(cfg Config, log *logrus.Entry) (*Agent, error) {
	base := cfg.BasePath
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		base = wd
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	var allowed map[string]bool
	if len(cfg.AllowedExtensions) > 0 {
		allowed = make(map[string]bool, len(cfg.AllowedExtensions))
		for _, ext := range cfg.AllowedExtensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			allowed[ext] = true
		}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Agent{base: abs, maxSize: maxSize, allowed: allowed, log: log.WithField("agent", Name)}, nil
}

// Available always reports true.
func (a *Agent) Available() bool { return true }

// BasePath returns the directory relative paths resolve against.
func (a *Agent) BasePath() string { return a.base }

// Tools declares the six file tools.
func (a *Agent) Tools() map[string]protocol.ToolSchema {
	return map[string]protocol.ToolSchema{
		"file_read": {
			Description: "Read the contents of a file",
			InputSchema: agents.Object(map[string]protocol.JSONSchema{
				"path":     agents.Str("Path to the file to read"),
				"encoding": agents.StrDefault("File encoding", "utf-8"),
			}, "path"),
		},
		"file_write": {
			Description: "Write content to a file",
			InputSchema: agents.Object(map[string]protocol.JSONSchema{
				"path":     agents.Str("Path to the file to write"),
				"content":  agents.Str("Content to write to the file"),
				"encoding": agents.StrDefault("File encoding", "utf-8"),
				"mode": {
					Type:        "string",
					Description: "Write mode: 'write' (overwrite) or 'append'",
					Enum:        []string{"write", "append"},
					Default:     "write",
				},
			}, "path", "content"),
		},
		"file_list": {
			Description: "List files and directories in a path",
			InputSchema: agents.Object(map[string]protocol.JSONSchema{
				"path":              agents.StrDefault("Directory path to list", "."),
				"pattern":           agents.StrDefault("File pattern to match (e.g., '*.txt')", "*"),
				"recursive":         agents.Boolean("List files recursively", false),
				"show_hidden":       agents.Boolean("Include hidden files", false),
				"respect_gitignore": agents.Boolean("Skip paths ignored by .gitignore", false),
			}),
		},
		"file_search": {
			Description: "Search for files containing specific text",
			InputSchema: agents.Object(map[string]protocol.JSONSchema{
				"query":             agents.Str("Text to search for"),
				"path":              agents.StrDefault("Directory to search in", "."),
				"file_pattern":      agents.StrDefault("File pattern to search in (e.g., '*.py')", "*"),
				"case_sensitive":    agents.Boolean("Case sensitive search", false),
				"max_results":       {Type: "integer", Description: "Maximum number of results", Default: 100},
				"respect_gitignore": agents.Boolean("Skip paths ignored by .gitignore", true),
			}, "query"),
		},
		"file_info": {
			Description: "Get information about a file or directory",
			InputSchema: agents.Object(map[string]protocol.JSONSchema{
				"path": agents.Str("Path to get information about"),
			}, "path"),
		},
		"file_create_directory": {
			Description: "Create a new directory",
			InputSchema: agents.Object(map[string]protocol.JSONSchema{
				"path":    agents.Str("Directory path to create"),
				"parents": agents.Boolean("Create parent directories if they don't exist", false),
			}, "path"),
		},
	}
}

// HandleToolCall dispatches one file tool.
func (a *Agent) HandleToolCall(_ context.Context, tool string, params map[string]any) (any, error) {
	p := agents.Params(params)
	var (
		out any
		err error
	)
	switch tool {
	case "file_read":
		out, err = a.read(p)
	case "file_write":
		out, err = a.write(p)
	case "file_list":
		out, err = a.list(p)
	case "file_search":
		out, err = a.search(p)
	case "file_info":
		out, err = a.info(p)
	case "file_create_directory":
		out, err = a.createDirectory(p)
	default:
		return nil, agents.UnknownTool(tool)
	}
	if err != nil {
		a.log.WithField("tool", tool).WithError(err).Warn("file tool failed")
		return nil, err
	}
	return out, nil
}

func (a *Agent) resolve(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.base, path)
	}
	return filepath.Clean(path)
}

func (a *Agent) checkExtension(path string) error {
	if a.allowed == nil {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !a.allowed[ext] {
		return agents.Invalid("file extension %q is not allowed", ext)
	}
	return nil
}
