package protocol

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
)

// Standard JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Application error codes used by the tool router.
const (
	CodeToolNotFound       = -32001
	CodeToolExecutionError = -32002
	CodeAgentNotAvailable  = -32003
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// MustRaw encodes v as a raw JSON message, falling back to null.
func MustRaw(v any) json.RawMessage {
	if v == nil {
		return json.RawMessage(`null`)
	}
	b, err := codec.Marshal(v)
	if err != nil {
		return json.RawMessage(`null`)
	}
	return json.RawMessage(b)
}

// Decode unmarshals raw tool arguments into a generic map.
// Empty or null input yields an empty map.
func Decode(raw json.RawMessage) (map[string]any, error) {
	out := map[string]any{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := codec.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// NewError builds a JSON-RPC error response.
func NewError(id any, code int, message string) Response {
	return Response{JSONRPC: Version, ID: id, Error: &ResponseError{Code: code, Message: message}}
}
