package runner

// OutcomeKind classifies a finished turn.
type OutcomeKind int

const (
	OutcomeMessage OutcomeKind = iota
	OutcomeToolExecution
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeMessage:
		return "message"
	case OutcomeToolExecution:
		return "tool_execution"
	case OutcomeError:
		return "error"
	}
	return "unknown"
}

// Outcome is the single result of a turn handed back to the UI.
type Outcome struct {
	Kind OutcomeKind
	Text string
}

// Message is a normal assistant reply.
func Message(text string) Outcome { return Outcome{Kind: OutcomeMessage, Text: text} }

// ToolExecution is a turn where tools ran but the model wrote no text.
func ToolExecution(text string) Outcome { return Outcome{Kind: OutcomeToolExecution, Text: text} }

// Error is a failed turn; Text is user-facing.
func Error(text string) Outcome { return Outcome{Kind: OutcomeError, Text: text} }

func (o Outcome) IsError() bool { return o.Kind == OutcomeError }
