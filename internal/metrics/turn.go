package metrics

import "time"

// TurnStats accumulates counters for one agentic turn.
type TurnStats struct {
	Outcome      string
	Rounds       int
	ToolCalls    int
	ToolErrors   int
	InputTokens  int64
	OutputTokens int64
	Truncated    bool
	Duration     time.Duration
}

// AddRound records one completed model round and its token usage.
func (s *TurnStats) AddRound(inputTokens, outputTokens int64) {
	s.Rounds++
	s.InputTokens += inputTokens
	s.OutputTokens += outputTokens
}

// AddToolCall records one tool execution.
func (s *TurnStats) AddToolCall(isError bool) {
	s.ToolCalls++
	if isError {
		s.ToolErrors++
	}
}

// LogArgs flattens the stats into slog-style key/value pairs.
func (s TurnStats) LogArgs() []any {
	return []any{
		"outcome", s.Outcome,
		"rounds", s.Rounds,
		"tool_calls", s.ToolCalls,
		"tool_errors", s.ToolErrors,
		"input_tokens", s.InputTokens,
		"output_tokens", s.OutputTokens,
		"truncated", s.Truncated,
		"duration", s.Duration,
	}
}
