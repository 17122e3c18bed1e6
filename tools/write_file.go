package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/dora-assist/internal/fsops"
)

type WriteFileInput struct {
	Path    string `json:"path" jsonschema_description:"Relative file path to write. Parent directories are created."`
	Content string `json:"content" jsonschema_description:"Full file content; replaces any existing content."`
}

var WriteFileInputSchema = GenerateSchema[WriteFileInput]()

// NewWriteFile returns the write_file tool bound to sb.
func NewWriteFile(sb *fsops.Sandbox) ToolDefinition {
	return ToolDefinition{
		Name:        "write_file",
		Description: "Write content to a file addressed by a relative path within the workspace, creating or overwriting it. Use this to create dataflow YAML files or node sources.",
		InputSchema: WriteFileInputSchema,
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			in, err := decodeInput[WriteFileInput](input)
			if err != nil {
				return "", err
			}
			if in.Path == "" {
				return "", errMissing("path")
			}
			n, err := sb.WriteFile(in.Path, in.Content)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Successfully wrote %d bytes to %s", n, in.Path), nil
		},
	}
}
