package telemetry

import (
	"context"
	"time"

	"github.com/petasbytes/dora-assist/internal/metrics"
)

// Event names.
const (
	EventTurnStarted    = "turn_started"
	EventPromptSize     = "prompt_size"
	EventRoundCompleted = "round_completed"
	EventToolExec       = "tool_exec"
	EventTurnFinished   = "turn_finished"
)

func turnID(ctx context.Context) string {
	id, _ := TurnIDFromContext(ctx)
	return id
}

// EmitTurnStarted records the start of a turn.
func EmitTurnStarted(ctx context.Context, provider string, messages, tools int) {
	Emit(EventTurnStarted, map[string]any{
		"turn_id":  turnID(ctx),
		"provider": provider,
		"messages": messages,
		"tools":    tools,
	})
}

// EmitPromptSize records the shape of the user's prompt, never the text.
func EmitPromptSize(ctx context.Context, prompt string) {
	if !ObserveEnabled() {
		return
	}
	Emit(EventPromptSize, map[string]any{
		"turn_id": turnID(ctx),
		"prompt":  metrics.MeasureText(prompt).Fields(),
	})
}

// Round describes one completed model call.
type Round struct {
	Number       int
	StopReason   string
	ToolCalls    int
	InputTokens  int64
	OutputTokens int64
	Latency      time.Duration
}

func EmitRoundCompleted(ctx context.Context, r Round) {
	Emit(EventRoundCompleted, map[string]any{
		"turn_id":       turnID(ctx),
		"round":         r.Number,
		"stop_reason":   r.StopReason,
		"tool_calls":    r.ToolCalls,
		"input_tokens":  r.InputTokens,
		"output_tokens": r.OutputTokens,
		"latency_ms":    r.Latency.Milliseconds(),
	})
}

// ToolExec describes one tool invocation. Err is a short category, not the
// tool's message, so payloads never leak into the events file.
type ToolExec struct {
	Name       string
	CallID     string
	Duration   time.Duration
	InputBytes int
	Output     string
	Err        string
}

func EmitToolExec(ctx context.Context, x ToolExec) {
	if !ObserveEnabled() {
		return
	}
	var errField any
	if x.Err != "" {
		errField = x.Err
	}
	Emit(EventToolExec, map[string]any{
		"turn_id":     turnID(ctx),
		"tool_name":   x.Name,
		"call_id":     x.CallID,
		"duration_ms": x.Duration.Milliseconds(),
		"input_size":  x.InputBytes,
		"output":      metrics.MeasureText(x.Output).Fields(),
		"error":       errField,
	})
}

// EmitTurnFinished records the per-turn counters collected by the loop.
func EmitTurnFinished(ctx context.Context, s metrics.TurnStats) {
	Emit(EventTurnFinished, map[string]any{
		"turn_id":       turnID(ctx),
		"outcome":       s.Outcome,
		"rounds":        s.Rounds,
		"tool_calls":    s.ToolCalls,
		"tool_errors":   s.ToolErrors,
		"input_tokens":  s.InputTokens,
		"output_tokens": s.OutputTokens,
		"truncated":     s.Truncated,
		"duration_ms":   s.Duration.Milliseconds(),
	})
}
