package bridge

import "sync"

// Mailbox is a single-slot hand-off. A Deposit before the previous value was
// taken overwrites it: the UI only ever sees the most recent result.
type Mailbox[T any] struct {
	mu   sync.Mutex
	val  T
	full bool
}

// Deposit stores v and reports whether an undrained value was replaced.
func (m *Mailbox[T]) Deposit(v T) (overwrote bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	overwrote = m.full
	m.val, m.full = v, true
	return overwrote
}

// Take returns the stored value and empties the slot. On an empty slot it
// returns false and leaves the mailbox unchanged.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if !m.full {
		return zero, false
	}
	v := m.val
	m.val, m.full = zero, false
	return v, true
}
