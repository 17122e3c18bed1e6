// Package safety confines tool file access to sandbox roots.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Error codes carried by ToolError.
const (
	CodeOutsideSandbox = "ERR_PATH_OUTSIDE_SANDBOX"
	CodeDeniedRead     = "ERR_DENIED_READ"
	CodeDeniedWrite    = "ERR_DENIED_WRITE"
	CodeNotAFile       = "ERR_NOT_A_FILE"
	CodeNotADir        = "ERR_NOT_A_DIR"
)

// ToolError is a machine-readable error body surfaced to the model as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns compact single-line JSON so tool_result payloads stay small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// Roots holds resolved absolute sandbox roots.
type Roots struct {
	Read  string
	Write string
}

// InitSandboxRoots resolves absolute read and write roots. An empty read root means
// the working directory; an empty write root falls back to the read root.
func InitSandboxRoots(readRoot, writeRoot string) (Roots, error) {
	if readRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Roots{}, fmt.Errorf("getwd: %w", err)
		}
		readRoot = cwd
	}
	if writeRoot == "" {
		writeRoot = readRoot
	}

	var err error
	if readRoot, err = filepath.Abs(readRoot); err != nil {
		return Roots{}, fmt.Errorf("abs(readRoot): %w", err)
	}
	if writeRoot, err = filepath.Abs(writeRoot); err != nil {
		return Roots{}, fmt.Errorf("abs(writeRoot): %w", err)
	}

	// Resolve symlinks where possible so boundary checks compare like with like.
	if r, err := filepath.EvalSymlinks(readRoot); err == nil {
		readRoot = r
	}
	if w, err := filepath.EvalSymlinks(writeRoot); err == nil {
		writeRoot = w
	}
	return Roots{Read: readRoot, Write: writeRoot}, nil
}

// resolve joins relPath under absRoot and returns the candidate plus its slash-form
// path relative to the root. It rejects absolute input, traversal and symlink escapes.
func resolve(absRoot, relPath string) (string, string, error) {
	if filepath.IsAbs(relPath) {
		return "", "", ToolError{Code: CodeOutsideSandbox, Message: "absolute paths are not allowed"}
	}
	cleaned := filepath.Clean(relPath)
	candidate := filepath.Join(absRoot, cleaned)

	// Resolve the whole candidate when it exists, otherwise its parent, so a
	// symlinked ancestor cannot smuggle a new file outside the root.
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else if parent, err := filepath.EvalSymlinks(filepath.Dir(candidate)); err == nil {
		candidate = filepath.Join(parent, filepath.Base(candidate))
	}

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", "", ToolError{Code: CodeOutsideSandbox, Message: "requested path resolves outside the sandbox root"}
	}
	return candidate, filepath.ToSlash(rel), nil
}

func underDir(rel, dir string) bool {
	return rel == dir || strings.HasPrefix(rel, dir+"/")
}

// ValidateReadPath returns the absolute path for a read under absRoot.
// Reads under .git/ and .agent/ are denied.
func ValidateReadPath(absRoot, relPath string) (string, error) {
	abs, rel, err := resolve(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if underDir(rel, ".git") || underDir(rel, ".agent") {
		return "", ToolError{Code: CodeDeniedRead, Message: "reads under .git/ or .agent/ are not allowed"}
	}
	return abs, nil
}
