package agents

import (
	"fmt"
	"math"
	"strings"
)

// Params wraps decoded JSON tool arguments.
type Params map[string]any

// UnknownTool builds the error returned for a tool the agent does not own.
func UnknownTool(tool string) error {
	return fmt.Errorf("%w: %s", ErrUnknownTool, tool)
}

// Invalid builds an ErrInvalidParams error with a formatted message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}

// Require returns the named string parameter or an ErrInvalidParams error.
func (p Params) Require(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", Invalid("missing required parameter %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", Invalid("parameter %q must be a string", key)
	}
	return s, nil
}

// String returns the named string parameter, or fallback when absent or empty.
func (p Params) String(key, fallback string) string {
	if s, ok := p[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// Bool returns the named boolean parameter, or fallback.
func (p Params) Bool(key string, fallback bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return fallback
}

// Float returns the named numeric parameter, or fallback.
func (p Params) Float(key string, fallback float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return fallback
}

// Int returns the named integer parameter, or fallback. JSON numbers arrive as float64.
func (p Params) Int(key string, fallback int) int {
	switch v := p[key].(type) {
	case float64:
		return int(math.Round(v))
	case int:
		return v
	case int64:
		return int(v)
	}
	return fallback
}

// Message is a chat turn supplied by a caller.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Messages extracts a list of chat messages from the named parameter.
// Entries that are not objects with a string role and content are rejected.
func (p Params) Messages(key string) ([]Message, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, Invalid("parameter %q must be an array", key)
	}
	out := make([]Message, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, Invalid("%s[%d] must be an object", key, i)
		}
		role, _ := m["role"].(string)
		content, _ := m["content"].(string)
		if role == "" {
			return nil, Invalid("%s[%d].role is required", key, i)
		}
		out = append(out, Message{Role: role, Content: content})
	}
	return out, nil
}
