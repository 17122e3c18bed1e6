// Package tools defines the tool execution contract and the built-in catalog.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Registry: ordered catalog that implements Executor.
//   - File tools: read_file, write_file, edit_file, list_directory (non-recursive).
//   - Process tools: shell_command and the dora_* dataflow commands.
//   - Invariants: every call yields exactly one Result carrying its call id.
package tools
