package safety

import (
	"os"
	"path"
)

// protectedBasenames may not be written at any depth.
var protectedBasenames = map[string]struct{}{
	"go.mod": {},
	"go.sum": {},
}

// ValidateWritePath returns the absolute path for a write under absRoot.
// Writes under .git/ and .agent/, and to module files at any depth, are denied.
func ValidateWritePath(absRoot, relPath string) (string, error) {
	abs, rel, err := resolve(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if underDir(rel, ".git") || underDir(rel, ".agent") {
		return "", ToolError{Code: CodeDeniedWrite, Message: "writes under .git/ or .agent/ are not allowed"}
	}
	if _, ok := protectedBasenames[path.Base(rel)]; ok {
		return "", ToolError{Code: CodeDeniedWrite, Message: "writes to " + path.Base(rel) + " are not allowed"}
	}
	return abs, nil
}

// ValidateDir returns the absolute path of an existing directory under absRoot,
// used for command working directories. An empty relPath means the root itself.
func ValidateDir(absRoot, relPath string) (string, error) {
	if relPath == "" {
		relPath = "."
	}
	abs, err := ValidateReadPath(absRoot, relPath)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return "", ToolError{Code: CodeNotADir, Message: "path is not a directory"}
	}
	return abs, nil
}
