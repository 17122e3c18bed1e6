// Package fsops performs file operations confined to a sandbox.
package fsops

import (
	"github.com/petasbytes/dora-assist/internal/safety"
)

// Sandbox holds the resolved roots that every operation is checked against.
type Sandbox struct {
	roots safety.Roots
}

// New resolves readRoot and writeRoot into a Sandbox. Empty roots fall back to
// the working directory and the read root respectively.
func New(readRoot, writeRoot string) (*Sandbox, error) {
	roots, err := safety.InitSandboxRoots(readRoot, writeRoot)
	if err != nil {
		return nil, err
	}
	return &Sandbox{roots: roots}, nil
}

// ReadRoot returns the absolute read root.
func (s *Sandbox) ReadRoot() string { return s.roots.Read }

// WriteRoot returns the absolute write root.
func (s *Sandbox) WriteRoot() string { return s.roots.Write }

// Dir resolves a working directory under the read root.
func (s *Sandbox) Dir(relDir string) (string, error) {
	return safety.ValidateDir(s.roots.Read, relDir)
}
