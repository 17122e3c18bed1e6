package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/petasbytes/dora-assist/internal/fsops"
)

type ReadFileInput struct {
	Path   string `json:"path" jsonschema_description:"Relative file path, e.g. dataflow.yml."`
	Offset int    `json:"offset,omitempty" jsonschema_description:"Line offset (0-based) to start reading from."`
	Limit  int    `json:"limit,omitempty" jsonschema_description:"Maximum lines to return from offset (default 200)."`
}

// Page limits keep tool results small enough to send back every round.
const (
	defaultReadFileLimit = 200
	maxLineRunes         = 2000
	overallRuneCap       = 12_000
	truncationSentinel   = "-- truncated; use offset/limit to fetch more --\n"
)

var ReadFileInputSchema = GenerateSchema[ReadFileInput]()

// NewReadFile returns the read_file tool bound to sb.
func NewReadFile(sb *fsops.Sandbox) ToolDefinition {
	return ToolDefinition{
		Name:        "read_file",
		Description: "Read the contents of a file addressed by a relative path within the workspace, such as a dataflow YAML or node source. Directory paths and unsafe paths are rejected.",
		InputSchema: ReadFileInputSchema,
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			return readFile(sb, input)
		},
	}
}

// clampRunes cuts s to at most n runes and reports whether it cut anything.
func clampRunes(s string, n int) (string, bool) {
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}

func readFile(sb *fsops.Sandbox, input json.RawMessage) (string, error) {
	in, err := decodeInput[ReadFileInput](input)
	if err != nil {
		return "", err
	}
	if in.Path == "" {
		return "", errMissing("path")
	}
	content, err := sb.ReadFile(in.Path)
	if err != nil {
		return "", err
	}

	out, truncated := pageLines(content, in.Offset, in.Limit)
	if truncated {
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += truncationSentinel
	}
	return out, nil
}

// pageLines returns limit lines starting at the 0-based offset, with each line
// and the whole page capped in runes. Negative offsets start at 0 and a
// non-positive limit means defaultReadFileLimit. The bool reports whether
// anything was left out.
func pageLines(content string, offset, limit int) (string, bool) {
	if limit <= 0 {
		limit = defaultReadFileLimit
	}
	lines := strings.Split(content, "\n")
	offset = min(max(offset, 0), len(lines))
	end := min(offset+limit, len(lines))

	page := lines[offset:end]
	truncated := end < len(lines)
	for i, line := range page {
		if clamped, cut := clampRunes(line, maxLineRunes); cut {
			page[i] = clamped
			truncated = true
		}
	}

	out, cut := clampRunes(strings.Join(page, "\n"), overallRuneCap)
	return out, truncated || cut
}
