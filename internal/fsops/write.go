package fsops

import (
	"os"
	"path/filepath"

	"github.com/petasbytes/dora-assist/internal/safety"
)

// WriteFile writes content to a file addressed by a relative path under the sandbox write root.
// Parent directories are created as needed. It returns the number of bytes written.
func (s *Sandbox) WriteFile(relPath, content string) (int, error) {
	absPath, err := safety.ValidateWritePath(s.roots.Write, relPath)
	if err != nil {
		return 0, err // propagate ToolError unchanged
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
		return 0, err
	}
	return len(content), nil
}
