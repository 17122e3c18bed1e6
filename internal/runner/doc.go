// Package runner drives one agentic turn: it sends the conversation to the
// model, executes requested tools and feeds their results back until the
// model finishes or the round cap is reached.
//
// Invariant:
//   - an assistant tool_use message is always followed by exactly one user
//     message carrying the tool_result for every call, in call order.
//
// Flow:
//
//	user(text) -> assistant(tool_use...) -> user(tool_result...) -> assistant(text)
package runner
