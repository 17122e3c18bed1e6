package tools

import "github.com/petasbytes/dora-assist/internal/fsops"

// NewCatalog returns the full built-in registry: dora commands first, then
// shell and file tools. When enabled is non-empty only the named tools are kept.
func NewCatalog(sb *fsops.Sandbox, opts ProcessOptions, enabled ...string) *Registry {
	defs := NewDoraTools(sb, opts)
	defs = append(defs,
		NewShellCommand(sb, opts),
		NewReadFile(sb),
		NewWriteFile(sb),
		NewEditFile(sb),
		NewListDirectory(sb),
	)
	if len(enabled) > 0 {
		keep := make(map[string]struct{}, len(enabled))
		for _, n := range enabled {
			keep[n] = struct{}{}
		}
		filtered := defs[:0]
		for _, d := range defs {
			if _, ok := keep[d.Name]; ok {
				filtered = append(filtered, d)
			}
		}
		defs = filtered
	}
	return NewRegistry(defs...)
}
