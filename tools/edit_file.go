package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/petasbytes/dora-assist/internal/fsops"
)

type EditFileInput struct {
	Path   string `json:"path" jsonschema_description:"Target relative file path"`
	OldStr string `json:"old_str" jsonschema_description:"Exact text to replace; must be present when editing an existing file."`
	NewStr string `json:"new_str" jsonschema_description:"New text to write or replace old_str with"`
}

var EditFileInputSchema = GenerateSchema[EditFileInput]()

// NewEditFile returns the edit_file tool bound to sb.
func NewEditFile(sb *fsops.Sandbox) ToolDefinition {
	return ToolDefinition{
		Name: "edit_file",
		Description: `Create or modify a text file addressed by a relative path within the workspace.

When old_str is empty and the file doesn't exist, a new file is created.

When editing an existing file, all occurrences of old_str are replaced with new_str; old_str and new_str must be different.
`,
		InputSchema: EditFileInputSchema,
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			return editFile(sb, input)
		},
	}
}

func editFile(sb *fsops.Sandbox, input json.RawMessage) (string, error) {
	in, err := decodeInput[EditFileInput](input)
	if err != nil {
		return "", err
	}
	if in.Path == "" {
		return "", errMissing("path")
	}
	if in.OldStr == in.NewStr {
		return "", fmt.Errorf("invalid edit parameters: old_str and new_str are identical")
	}

	exists, err := sb.Exists(in.Path)
	if err != nil {
		return "", err
	}
	if !exists {
		if in.OldStr != "" {
			return "", fmt.Errorf("file %s does not exist", in.Path)
		}
		if _, err := sb.WriteFile(in.Path, in.NewStr); err != nil {
			return "", err
		}
		return fmt.Sprintf("Successfully created file %s", in.Path), nil
	}

	if in.OldStr == "" {
		return "", fmt.Errorf("old_str must be provided when editing an existing file")
	}

	content, err := sb.ReadFile(in.Path)
	if err != nil {
		return "", err
	}
	n := strings.Count(content, in.OldStr)
	if n == 0 {
		return "", fmt.Errorf("old_str not found in %s", in.Path)
	}
	if _, err := sb.WriteFile(in.Path, strings.ReplaceAll(content, in.OldStr, in.NewStr)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully replaced %d occurrence(s) in %s", n, in.Path), nil
}
