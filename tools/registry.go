package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/petasbytes/dora-assist/internal/telemetry"
)

// Registry is an ordered, immutable tool catalog.
type Registry struct {
	defs   []ToolDefinition
	byName map[string]int
}

var _ Executor = (*Registry)(nil)

// NewRegistry builds a registry from defs in the given order. Later duplicates
// of a name are ignored.
func NewRegistry(defs ...ToolDefinition) *Registry {
	r := &Registry{byName: make(map[string]int, len(defs))}
	for _, d := range defs {
		if _, dup := r.byName[d.Name]; dup {
			continue
		}
		r.byName[d.Name] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return r
}

// Catalog returns a copy of the advertised definitions in order.
func (r *Registry) Catalog() []ToolDefinition {
	out := make([]ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Names returns the tool names in catalog order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.defs))
	for i, d := range r.defs {
		out[i] = d.Name
	}
	return out
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (ToolDefinition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return ToolDefinition{}, false
	}
	return r.defs[i], true
}

// Execute runs the named tool and emits a tool_exec event. Raw payloads are
// never written to telemetry.
func (r *Registry) Execute(ctx context.Context, name, callID string, input json.RawMessage) Result {
	start := time.Now()
	ev := telemetry.ToolExec{Name: name, CallID: callID, InputBytes: len(input)}
	defer func() {
		ev.Duration = time.Since(start)
		telemetry.EmitToolExec(ctx, ev)
	}()

	def, ok := r.Lookup(name)
	if !ok {
		ev.Err = "tool not found"
		return Result{ToolUseID: callID, Content: fmt.Sprintf("Unknown tool: %s", name), IsError: true}
	}

	out, err := def.Function(ctx, input)
	if err != nil {
		ev.Err = "tool error"
		return Result{ToolUseID: callID, Content: err.Error(), IsError: true}
	}
	ev.Output = out
	return Result{ToolUseID: callID, Content: out}
}
