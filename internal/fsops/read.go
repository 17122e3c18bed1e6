package fsops

import (
	"os"

	"github.com/petasbytes/dora-assist/internal/safety"
)

// ReadFile reads a file addressed by a relative path under the sandbox read root.
// It validates the path via safety and returns a ToolError JSON on policy violations.
func (s *Sandbox) ReadFile(relPath string) (string, error) {
	absPath, err := safety.ValidateReadPath(s.roots.Read, relPath)
	if err != nil {
		return "", err // propagate ToolError or standard error
	}

	fi, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", safety.ToolError{Code: safety.CodeNotAFile, Message: "path is a directory"}
	}

	b, err := os.ReadFile(absPath)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Exists reports whether relPath names an existing regular file under the read root.
func (s *Sandbox) Exists(relPath string) (bool, error) {
	absPath, err := safety.ValidateReadPath(s.roots.Read, relPath)
	if err != nil {
		return false, err
	}
	fi, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !fi.IsDir(), nil
}
