package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ToolDefinition describes one tool advertised to the model.
type ToolDefinition struct {
	Name        string
	Description string
	// InputSchema is a JSON Schema object with "properties" and optional "required".
	InputSchema map[string]any
	Function    func(ctx context.Context, input json.RawMessage) (string, error)
}

// Properties returns the schema's "properties" member, or an empty object.
func (d ToolDefinition) Properties() map[string]any {
	if p, ok := d.InputSchema["properties"].(map[string]any); ok {
		return p
	}
	return map[string]any{}
}

// Required returns the schema's "required" member.
func (d ToolDefinition) Required() []string {
	switch v := d.InputSchema["required"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// GenerateSchema reflects T into an inline JSON Schema object. Fields without
// omitempty are required.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	b, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("tools: marshal schema for %T: %v", v, err))
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		panic(fmt.Sprintf("tools: unmarshal schema for %T: %v", v, err))
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out
}

// decodeInput unmarshals a tool's raw input. A null or empty input decodes to the zero value.
func decodeInput[T any](input json.RawMessage) (T, error) {
	var v T
	if len(input) == 0 || string(input) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(input, &v); err != nil {
		return v, fmt.Errorf("invalid input: %w", err)
	}
	return v, nil
}

// errMissing reports an absent required argument in the form the model is prompted with.
func errMissing(arg string) error {
	return fmt.Errorf("Missing %s argument", arg)
}
