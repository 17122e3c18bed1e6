package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/petasbytes/dora-assist/internal/logging"
	"github.com/petasbytes/dora-assist/internal/runner"
	"github.com/petasbytes/dora-assist/memory"
)

const DefaultQueueSize = 16

// ErrQueueFull is returned by Submit when the pending queue is at capacity.
var ErrQueueFull = errors.New("bridge: request queue is full")

// TurnRunner runs one turn to completion.
type TurnRunner interface {
	RunTurn(ctx context.Context, msgs []memory.Message) runner.Outcome
}

// Options configure a RuntimeState.
type Options struct {
	Logger    logging.Logger
	QueueSize int
}

// RuntimeState owns the worker lifecycle, the submission queue, the key store
// and the result mailbox. Create one per process and pass it by handle.
type RuntimeState struct {
	runner  TurnRunner
	keys    *KeyStore
	mailbox Mailbox[runner.Outcome]
	opts    Options

	// inFlight counts accepted submissions whose Outcome is not yet deposited.
	inFlight atomic.Int64

	mu      sync.Mutex
	started bool
	queue   chan memory.Conversation
}

// New creates the runtime. The worker is not started until the first Submit.
// A nil keys gets a fresh, empty KeyStore.
func New(r TurnRunner, keys *KeyStore, optFns ...func(o *Options)) *RuntimeState {
	opts := Options{
		Logger:    logging.NoOpLogger{},
		QueueSize: DefaultQueueSize,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if keys == nil {
		keys = &KeyStore{}
	}
	return &RuntimeState{runner: r, keys: keys, opts: opts}
}

// Submit enqueues a snapshot of conv for processing and returns immediately.
// The conversation is cloned, so later edits by the caller are not seen by
// the worker. ErrQueueFull is returned when the queue has no room.
func (s *RuntimeState) Submit(conv memory.Conversation) error {
	q := s.ensureWorker()
	s.inFlight.Add(1)
	select {
	case q <- conv.Clone():
		s.opts.Logger.Debug("turn submitted", "messages", conv.Len(), "queued", len(q))
		return nil
	default:
		s.inFlight.Add(-1)
		s.opts.Logger.Warn("turn rejected: queue full", "capacity", cap(q))
		return ErrQueueFull
	}
}

// ensureWorker starts the worker exactly once and returns the queue.
func (s *RuntimeState) ensureWorker() chan<- memory.Conversation {
	s.mu.Lock()
	if s.started {
		q := s.queue
		s.mu.Unlock()
		return q
	}
	s.started = true
	s.queue = make(chan memory.Conversation, s.opts.QueueSize)
	q := s.queue
	s.mu.Unlock()

	go s.work(q)
	s.opts.Logger.Info("worker started", "queue_size", s.opts.QueueSize)
	return q
}

// work runs queued turns one at a time until the process exits.
func (s *RuntimeState) work(queue <-chan memory.Conversation) {
	ctx := context.Background()
	for conv := range queue {
		out := s.runTurn(ctx, conv)
		if s.mailbox.Deposit(out) {
			s.opts.Logger.Warn("undrained outcome overwritten")
		}
		s.inFlight.Add(-1)
	}
}

// runTurn guarantees one Outcome per submission even if the runner panics.
func (s *RuntimeState) runTurn(ctx context.Context, conv memory.Conversation) (out runner.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.opts.Logger.Error("turn panicked", "panic", r)
			out = runner.Error(fmt.Sprintf("Internal error: %v", r))
		}
	}()
	return s.runner.RunTurn(ctx, conv.Messages())
}

// Poll drains the mailbox. It never blocks.
func (s *RuntimeState) Poll() (runner.Outcome, bool) {
	return s.mailbox.Take()
}

// InFlight reports how many accepted submissions have not yet produced an
// Outcome. It reaches zero even when an undrained Outcome was overwritten, so
// hosts should use it rather than counting drained Outcomes.
func (s *RuntimeState) InFlight() int { return int(s.inFlight.Load()) }

// SetAPIKey replaces the key used by subsequent requests.
func (s *RuntimeState) SetAPIKey(key string) { s.keys.Set(key) }

func (s *RuntimeState) APIKey() string { return s.keys.APIKey() }

// Keys exposes the store so the runner can be wired to read from it.
func (s *RuntimeState) Keys() *KeyStore { return s.keys }

// Started reports whether the worker has been launched.
func (s *RuntimeState) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
