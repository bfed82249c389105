package agents

import "github.com/agentic-mcp/agentic-mcp-server/internal/protocol"

// Object builds an object schema from properties and required names.
func Object(props map[string]protocol.JSONSchema, required ...string) *protocol.JSONSchema {
	return &protocol.JSONSchema{Type: "object", Properties: props, Required: required}
}

// Str describes a string property.
func Str(desc string) protocol.JSONSchema {
	return protocol.JSONSchema{Type: "string", Description: desc}
}

// StrDefault describes a string property with a default value.
func StrDefault(desc, def string) protocol.JSONSchema {
	return protocol.JSONSchema{Type: "string", Description: desc, Default: def}
}

// Enum describes a string property restricted to the given values.
func Enum(desc string, values ...string) protocol.JSONSchema {
	return protocol.JSONSchema{Type: "string", Description: desc, Enum: values}
}

// Boolean describes a boolean property with a default.
func Boolean(desc string, def bool) protocol.JSONSchema {
	return protocol.JSONSchema{Type: "boolean", Description: desc, Default: def}
}

// Integer describes an integer property bounded by min and max.
func Integer(desc string, min, max float64) protocol.JSONSchema {
	return protocol.JSONSchema{Type: "integer", Description: desc, Minimum: &min, Maximum: &max}
}

// Number describes a numeric property bounded by min and max.
func Number(desc string, min, max float64) protocol.JSONSchema {
	return protocol.JSONSchema{Type: "number", Description: desc, Minimum: &min, Maximum: &max}
}
