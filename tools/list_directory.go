package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/petasbytes/dora-assist/internal/fsops"
)

type ListDirectoryInput struct {
	Path string `json:"path,omitempty" jsonschema_description:"Optional relative directory to list (defaults to the workspace root)."`
}

var ListDirectoryInputSchema = GenerateSchema[ListDirectoryInput]()

// NewListDirectory returns the list_directory tool bound to sb.
func NewListDirectory(sb *fsops.Sandbox) ToolDefinition {
	return ToolDefinition{
		Name:        "list_directory",
		Description: "List the entries of a directory within the workspace (non-recursive). Each line is prefixed with [DIR], [FILE] or [LINK].",
		InputSchema: ListDirectoryInputSchema,
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			in, err := decodeInput[ListDirectoryInput](input)
			if err != nil {
				return "", err
			}
			entries, err := sb.ListEntries(in.Path)
			if err != nil {
				return "", err
			}
			if len(entries) == 0 {
				return "(empty directory)", nil
			}
			var b strings.Builder
			for i, e := range entries {
				if i > 0 {
					b.WriteByte('\n')
				}
				fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Name)
			}
			return b.String(), nil
		},
	}
}
