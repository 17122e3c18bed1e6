package bridge

import (
	"context"
	"fmt"

	"github.com/petasbytes/dora-assist/internal/runner"
	"github.com/petasbytes/dora-assist/memory"
)

// Inline serves hosts that cannot poll. There is no queue and no worker:
// Run executes the turn on the caller's goroutine, and the caller is
// responsible for keeping it off its UI thread. Pair it with a runner built
// without a toolbox so each turn is a single round.
type Inline struct {
	runner TurnRunner
	keys   *KeyStore
}

func NewInline(r TurnRunner, keys *KeyStore) *Inline {
	if keys == nil {
		keys = &KeyStore{}
	}
	return &Inline{runner: r, keys: keys}
}

// Run executes one turn over a snapshot of conv. A panic in the runner
// becomes an Error outcome. Concurrent calls are independent, so a host that
// starts several Runs at once may receive their outcomes in any order.
func (in *Inline) Run(ctx context.Context, conv memory.Conversation) (out runner.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = runner.Error(fmt.Sprintf("Internal error: %v", r))
		}
	}()
	return in.runner.RunTurn(ctx, conv.Clone().Messages())
}

func (in *Inline) SetAPIKey(key string) { in.keys.Set(key) }

func (in *Inline) APIKey() string { return in.keys.APIKey() }
