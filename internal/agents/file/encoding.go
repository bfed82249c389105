package file

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
)

func isUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, agents.Invalid("unsupported encoding %q", name)
	}
	return enc, nil
}

func decode(data []byte, name string) (string, error) {
	if isUTF8(name) {
		if !utf8.Valid(data) {
			return "", agents.Invalid("failed to decode file with encoding %s", name)
		}
		return string(data), nil
	}
	enc, err := lookupEncoding(name)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", agents.Invalid("failed to decode file with encoding %s: %v", name, err)
	}
	return string(out), nil
}

func encode(content, name string) ([]byte, error) {
	if isUTF8(name) {
		return []byte(content), nil
	}
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewEncoder().Bytes([]byte(content))
	if err != nil {
		return nil, agents.Invalid("failed to encode content as %s: %v", name, err)
	}
	return out, nil
}
