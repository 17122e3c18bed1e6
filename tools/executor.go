package tools

import (
	"context"
	"encoding/json"
)

// Result is the outcome of one tool call, keyed by the provider's call id.
type Result struct {
	ToolUseID string
	Content   string
	IsError   bool
}

// Executor runs a named tool synchronously. It never fails outright: unknown
// tools and handler errors come back as Results with IsError set.
type Executor interface {
	Execute(ctx context.Context, name, callID string, input json.RawMessage) Result
}
