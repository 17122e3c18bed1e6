// Package provider adapts the agent's message log to hosted model APIs.
//
// Adapters translate a Request into the provider's wire format, send it with
// the caller's API key and return a provider-neutral Response. Failures are
// classified into PreconditionError, TransportError, ProtocolError and DecodeError.
package provider

import (
	"context"
	"encoding/json"

	"github.com/petasbytes/dora-assist/tools"
)

// Stop reasons shared across adapters.
const (
	StopEndTurn   = "end_turn"
	StopToolUse   = "tool_use"
	StopMaxTokens = "max_tokens"
)

// Request is one model call.
type Request struct {
	APIKey   string
	System   string
	Messages []WireMessage
	// Tools is omitted from the wire request when empty.
	Tools []tools.ToolDefinition
}

// Usage reports token counts for one call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Response is a decoded model reply with block order preserved.
type Response struct {
	Blocks     []ContentBlock
	StopReason string
	Usage      Usage
}

// ToolCall is a tool invocation extracted from a response.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// Texts returns the text segments in arrival order.
func (r *Response) Texts() []string {
	var out []string
	for _, b := range r.Blocks {
		if t, ok := b.(TextBlock); ok {
			out = append(out, t.Text)
		}
	}
	return out
}

// ToolCalls returns the tool invocations in arrival order.
func (r *Response) ToolCalls() []ToolCall {
	var out []ToolCall
	for _, b := range r.Blocks {
		if u, ok := b.(ToolUseBlock); ok {
			out = append(out, ToolCall{ID: u.ID, Name: u.Name, Input: u.Input})
		}
	}
	return out
}

// NaturalEnd reports whether the model finished its turn on its own.
func (r *Response) NaturalEnd() bool { return r.StopReason == StopEndTurn }

// Provider sends a Request and returns the decoded Response.
type Provider interface {
	Name() string
	Send(ctx context.Context, req Request) (*Response, error)
}
