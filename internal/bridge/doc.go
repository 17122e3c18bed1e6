// Package bridge connects a non-blocking UI to the agent loop.
//
// The UI submits conversation snapshots and polls for results once per frame.
// A single background worker, started on first submission, runs turns one at a
// time in FIFO order and deposits each Outcome into a single-slot Mailbox.
// The UI goroutine never performs network I/O.
package bridge
