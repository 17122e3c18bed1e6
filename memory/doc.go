// Package memory holds the in-process conversation model.
//
// Model:
//   - A conversation is an ordered, append-only list of role + text messages.
//   - Tool blocks never appear here; they live only in the provider wire log of a turn.
//   - Nothing is persisted; a conversation lives as long as the process.
package memory
