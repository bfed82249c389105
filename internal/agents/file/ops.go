package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
)

func (a *Agent) read(p agents.Params) (map[string]any, error) {
	raw, err := p.Require("path")
	if err != nil {
		return nil, err
	}
	path := a.resolve(raw)
	enc := p.String("encoding", "utf-8")

	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !st.Mode().IsRegular() {
		return nil, agents.Invalid("path is not a file: %s", path)
	}
	if err := a.checkExtension(path); err != nil {
		return nil, err
	}
	if st.Size() > a.maxSize {
		return nil, agents.Invalid("file %s is %d bytes, limit is %d", path, st.Size(), a.maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	content, err := decode(data, enc)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"content":  content,
		"path":     path,
		"size":     st.Size(),
		"encoding": enc,
	}, nil
}

func (a *Agent) write(p agents.Params) (map[string]any, error) {
	raw, err := p.Require("path")
	if err != nil {
		return nil, err
	}
	content, err := p.Require("content")
	if err != nil {
		return nil, err
	}
	path := a.resolve(raw)
	enc := p.String("encoding", "utf-8")
	mode := p.String("mode", "write")
	if mode != "write" && mode != "append" {
		return nil, agents.Invalid("mode must be 'write' or 'append', got %q", mode)
	}
	if err := a.checkExtension(path); err != nil {
		return nil, err
	}

	data, err := encode(content, enc)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create parent directories: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if mode == "append" {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return map[string]any{
		"path":     path,
		"size":     st.Size(),
		"mode":     mode,
		"encoding": enc,
	}, nil
}

func (a *Agent) info(p agents.Params) (map[string]any, error) {
	raw, err := p.Require("path")
	if err != nil {
		return nil, err
	}
	path := a.resolve(raw)

	lst, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("path not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	st := lst
	if lst.Mode()&fs.ModeSymlink != 0 {
		if target, err := os.Stat(path); err == nil {
			st = target
		}
	}

	out := map[string]any{
		"path":         path,
		"name":         filepath.Base(path),
		"parent":       filepath.Dir(path),
		"exists":       true,
		"is_file":      st.Mode().IsRegular(),
		"is_directory": st.IsDir(),
		"is_symlink":   lst.Mode()&fs.ModeSymlink != 0,
		"size":         st.Size(),
		"modified":     st.ModTime().Format(time.RFC3339),
		"permissions":  fmt.Sprintf("%03o", st.Mode().Perm()),
	}
	if st.Mode().IsRegular() {
		out["extension"] = filepath.Ext(path)
		out["is_text"] = looksText(path)
	}
	return out, nil
}

// looksText samples the first KiB and reports whether every byte is 7-bit ASCII.
func looksText(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, 1024)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false
	}
	for _, b := range buf[:n] {
		if b >= 128 {
			return false
		}
	}
	return true
}

func (a *Agent) createDirectory(p agents.Params) (map[string]any, error) {
	raw, err := p.Require("path")
	if err != nil {
		return nil, err
	}
	path := a.resolve(raw)
	parents := p.Bool("parents", false)

	if st, err := os.Stat(path); err == nil {
		if st.IsDir() {
			return map[string]any{
				"path":    path,
				"created": false,
				"message": "Directory already exists",
			}, nil
		}
		return nil, agents.Invalid("path exists but is not a directory: %s", path)
	}

	if parents {
		err = os.MkdirAll(path, 0o755)
	} else {
		err = os.Mkdir(path, 0o755)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, agents.Invalid("parent directory doesn't exist, use parents=true to create parent directories")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return map[string]any{
		"path":    path,
		"created": true,
		"parents": parents,
	}, nil
}
