package fsops

import (
	"io/fs"
	"os"
	"sort"

	"github.com/petasbytes/dora-assist/internal/safety"
)

// EntryKind classifies a directory entry.
type EntryKind string

const (
	KindDir  EntryKind = "DIR"
	KindFile EntryKind = "FILE"
	KindLink EntryKind = "LINK"
)

// Entry is one non-recursive directory listing item.
type Entry struct {
	Name string
	Kind EntryKind
}

// ListEntries lists the entries of relDir under the read root, sorted by name.
// Denied names (.git, .agent) are skipped at the sandbox root.
func (s *Sandbox) ListEntries(relDir string) ([]Entry, error) {
	if relDir == "" {
		relDir = "."
	}
	absDir, err := safety.ValidateReadPath(s.roots.Read, relDir)
	if err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(absDir)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(dirents))
	for _, e := range dirents {
		if absDir == s.roots.Read && (e.Name() == ".git" || e.Name() == ".agent") {
			continue
		}
		kind := KindFile
		switch {
		case e.Type()&fs.ModeSymlink != 0:
			kind = KindLink
		case e.IsDir():
			kind = KindDir
		}
		out = append(out, Entry{Name: e.Name(), Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
