package protocol

import (
	"encoding/json"
	"strings"
)

// Version is the JSON-RPC version spoken by every transport.
const Version = "2.0"

// MCPProtocolVersion is advertised in the initialize handshake.
const MCPProtocolVersion = "2024-11-05"

// Request represents a minimal JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no response.
func (r Request) IsNotification() bool {
	return strings.HasPrefix(r.Method, "notifications/")
}

// Response models a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string         `json:"jsonrpc,omitempty"`
	ID      any            `json:"id"`
	Result  any            `json:"result,omitempty"`
	Error   *ResponseError `json:"error,omitempty"`
}

// ResponseError holds JSON-RPC error data.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *ResponseError) Error() string {
	return e.Message
}

// ToolSchema is what an agent declares for each of its tools. RawInputSchema,
// when set, is emitted verbatim instead of InputSchema; proxied servers use it
// for schemas the JSONSchema subset cannot represent.
type ToolSchema struct {
	Description    string          `json:"description"`
	InputSchema    *JSONSchema     `json:"inputSchema,omitempty"`
	RawInputSchema json.RawMessage `json:"-"`
}

// ToolDescriptor describes a tool available from the MCP server.
type ToolDescriptor struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	InputSchema    *JSONSchema     `json:"inputSchema,omitempty"`
	RawInputSchema json.RawMessage `json:"-"`
}

type descriptorAlias ToolDescriptor

type rawDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// MarshalJSON prefers the raw input schema when one is present.
func (d ToolDescriptor) MarshalJSON() ([]byte, error) {
	if len(d.RawInputSchema) > 0 {
		return json.Marshal(rawDescriptor{Name: d.Name, Description: d.Description, InputSchema: d.RawInputSchema})
	}
	return json.Marshal(descriptorAlias(d))
}

// UnmarshalJSON keeps the input schema verbatim and decodes the typed subset
// when it fits.
func (d *ToolDescriptor) UnmarshalJSON(data []byte) error {
	var raw rawDescriptor
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = ToolDescriptor{Name: raw.Name, Description: raw.Description}
	if len(raw.InputSchema) == 0 || string(raw.InputSchema) == "null" {
		return nil
	}
	d.RawInputSchema = append(json.RawMessage(nil), raw.InputSchema...)
	var typed JSONSchema
	if err := json.Unmarshal(raw.InputSchema, &typed); err == nil {
		d.InputSchema = &typed
	}
	return nil
}

// Describe turns a schema into a named descriptor.
func (s ToolSchema) Describe(name string) ToolDescriptor {
	in := s.InputSchema
	if in == nil && len(s.RawInputSchema) == 0 {
		in = &JSONSchema{Type: "object"}
	}
	return ToolDescriptor{Name: name, Description: s.Description, InputSchema: in, RawInputSchema: s.RawInputSchema}
}

// JSONSchema is a minimal subset to describe tool input shapes.
type JSONSchema struct {
	Type                 string                `json:"type,omitempty"`
	Properties           map[string]JSONSchema `json:"properties,omitempty"`
	Items                *JSONSchema           `json:"items,omitempty"`
	Required             []string              `json:"required,omitempty"`
	Enum                 []string              `json:"enum,omitempty"`
	Description          string                `json:"description,omitempty"`
	Default              any                   `json:"default,omitempty"`
	Minimum              *float64              `json:"minimum,omitempty"`
	Maximum              *float64              `json:"maximum,omitempty"`
	AdditionalProperties any                   `json:"additionalProperties,omitempty"`
}

// ListResult is the payload for tools/list.
type ListResult struct {
	Tools []ToolDescriptor `json:"tools"`
}

// CallParams represents parameters for tools/call.
type CallParams struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"arguments,omitempty"`
}

// ContentPart is a single piece of tool output.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResult is the payload for a successful tool invocation.
type CallResult struct {
	Content []ContentPart `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// Text returns the text parts joined by newlines.
func (r CallResult) Text() string {
	var sb strings.Builder
	for i, c := range r.Content {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(c.Text)
	}
	return sb.String()
}
