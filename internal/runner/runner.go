package runner

import (
	"context"
	"strings"
	"time"

	"github.com/petasbytes/dora-assist/internal/logging"
	"github.com/petasbytes/dora-assist/internal/metrics"
	"github.com/petasbytes/dora-assist/internal/provider"
	"github.com/petasbytes/dora-assist/internal/telemetry"
	"github.com/petasbytes/dora-assist/memory"
	"github.com/petasbytes/dora-assist/tools"
)

const (
	DefaultMaxRounds    = 10
	DefaultPreviewLimit = 200

	TruncationNotice = "[Reached maximum tool iterations]"
	EmptyResponse    = "Empty response from Claude"
)

// KeySource supplies the API key. It is read fresh for every request.
type KeySource interface {
	APIKey() string
}

// Toolbox is an executable tool catalog.
type Toolbox interface {
	tools.Executor
	Catalog() []tools.ToolDefinition
}

// Options configure a Runner.
type Options struct {
	Logger    logging.Logger
	MaxRounds int
	// RequestTimeout bounds each model call. Zero means no per-round timeout.
	RequestTimeout time.Duration
	PreviewLimit   int
	System         string
}

// Runner executes turns. It holds no per-turn state and may be shared, though
// the bridge runs turns strictly one at a time.
type Runner struct {
	provider provider.Provider
	keys     KeySource
	tools    Toolbox
	opts     Options
}

// New creates a Runner. A nil toolbox runs in degraded mode: no tools are
// advertised and every turn is a single round.
func New(p provider.Provider, keys KeySource, tb Toolbox, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Logger:       logging.NoOpLogger{},
		MaxRounds:    DefaultMaxRounds,
		PreviewLimit: DefaultPreviewLimit,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = DefaultPreviewLimit
	}
	return &Runner{provider: p, keys: keys, tools: tb, opts: opts}
}

// turn is the mutable state of one RunTurn call.
type turn struct {
	wire      []provider.WireMessage
	out       strings.Builder
	modelText bool
	stats     metrics.TurnStats
}

// appendPiece adds s to the accumulated output, separated by a blank line.
func (t *turn) appendPiece(s string) {
	if t.out.Len() > 0 {
		t.out.WriteString("\n\n")
	}
	t.out.WriteString(s)
}

// RunTurn runs one user turn over msgs and returns exactly one Outcome.
func (r *Runner) RunTurn(ctx context.Context, msgs []memory.Message) Outcome {
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	log := r.opts.Logger
	start := time.Now()

	t := &turn{wire: provider.FromMemory(msgs)}
	finish := func(o Outcome) Outcome {
		t.stats.Outcome = o.Kind.String()
		t.stats.Duration = time.Since(start)
		telemetry.EmitTurnFinished(ctx, t.stats)
		log.Info("turn finished", append([]any{"turn_id", turnID}, t.stats.LogArgs()...)...)
		return o
	}

	if r.keys == nil || r.keys.APIKey() == "" {
		log.Warn("turn rejected: no API key", "turn_id", turnID)
		return finish(Error(provider.ErrMissingAPIKey.Error()))
	}

	var catalog []tools.ToolDefinition
	if r.tools != nil {
		catalog = r.tools.Catalog()
	}
	telemetry.EmitTurnStarted(ctx, r.provider.Name(), len(msgs), len(catalog))
	if last, ok := lastUser(msgs); ok {
		telemetry.EmitPromptSize(ctx, last)
	}

	for round := 1; ; round++ {
		if round > r.opts.MaxRounds {
			t.stats.Truncated = true
			t.appendPiece(TruncationNotice)
			log.Warn("round cap reached", "turn_id", turnID, "max_rounds", r.opts.MaxRounds)
			return finish(Message(t.out.String()))
		}

		sent := time.Now()
		resp, err := r.send(ctx, t.wire, catalog)
		if err != nil {
			log.Error("model request failed", "turn_id", turnID, "round", round,
				"err", err, "retryable", provider.IsRetryable(err))
			return finish(Error(err.Error()))
		}
		t.stats.AddRound(resp.Usage.InputTokens, resp.Usage.OutputTokens)

		text := strings.Join(resp.Texts(), "")
		if text != "" {
			t.modelText = true
			t.appendPiece(text)
		}
		calls := resp.ToolCalls()
		telemetry.EmitRoundCompleted(ctx, telemetry.Round{
			Number:       round,
			StopReason:   resp.StopReason,
			ToolCalls:    len(calls),
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			Latency:      time.Since(sent),
		})
		log.Debug("round completed", "turn_id", turnID, "round", round,
			"stop_reason", resp.StopReason, "tool_calls", len(calls))

		if resp.NaturalEnd() || (len(calls) == 0 && text != "") {
			return finish(r.done(t))
		}
		if len(calls) == 0 {
			return finish(Error(EmptyResponse))
		}
		if len(catalog) == 0 {
			log.Warn("tool calls ignored without a catalog", "turn_id", turnID, "tool_calls", len(calls))
			return finish(r.done(t))
		}

		t.wire = append(t.wire, provider.AssistantToolMessage(resp))
		results := make([]tools.Result, 0, len(calls))
		for _, c := range calls {
			t.appendPiece("🔧 Executing: " + c.Name)
			res := r.tools.Execute(ctx, c.Name, c.ID, c.Input)
			t.stats.AddToolCall(res.IsError)
			if res.IsError {
				t.out.WriteString("\n❌ Error: " + preview(res.Content, r.opts.PreviewLimit))
			} else {
				t.out.WriteString("\n✅ Result: " + preview(res.Content, r.opts.PreviewLimit))
			}
			results = append(results, res)
		}
		t.wire = append(t.wire, provider.ToolResultsMessage(results))
	}
}

// done converts a finished turn into its Outcome.
func (r *Runner) done(t *turn) Outcome {
	if t.out.Len() == 0 {
		return Error(EmptyResponse)
	}
	if !t.modelText && t.stats.ToolCalls > 0 {
		return ToolExecution(t.out.String())
	}
	return Message(t.out.String())
}

func (r *Runner) send(ctx context.Context, wire []provider.WireMessage, catalog []tools.ToolDefinition) (*provider.Response, error) {
	if r.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.RequestTimeout)
		defer cancel()
	}
	return r.provider.Send(ctx, provider.Request{
		APIKey:   r.keys.APIKey(),
		System:   r.opts.System,
		Messages: wire,
		Tools:    catalog,
	})
}

// preview returns the first limit runes of s, marking any cut with "...".
func preview(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

func lastUser(msgs []memory.Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == memory.RoleUser {
			return msgs[i].Text, true
		}
	}
	return "", false
}
