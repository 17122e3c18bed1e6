package provider

import (
	"encoding/json"
	"fmt"
)

// Block kinds as they appear in the "type" field on the wire.
const (
	KindText       = "text"
	KindToolUse    = "tool_use"
	KindToolResult = "tool_result"
)

// ContentBlock is one segment of a structured message. The set of variants is
// closed: TextBlock, ToolUseBlock and ToolResultBlock.
type ContentBlock interface {
	isContentBlock()
	Kind() string
}

// TextBlock is model or user text.
type TextBlock struct {
	Text string
}

// ToolUseBlock is a tool invocation requested by the model.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResultBlock answers the ToolUseBlock with the same id.
type ToolResultBlock struct {
	ToolUseID string
	Content   string
	IsError   bool
}

func (TextBlock) isContentBlock()       {}
func (ToolUseBlock) isContentBlock()    {}
func (ToolResultBlock) isContentBlock() {}

func (TextBlock) Kind() string       { return KindText }
func (ToolUseBlock) Kind() string    { return KindToolUse }
func (ToolResultBlock) Kind() string { return KindToolResult }

func NewTextBlock(text string) TextBlock { return TextBlock{Text: text} }

func NewToolUseBlock(id, name string, input json.RawMessage) ToolUseBlock {
	return ToolUseBlock{ID: id, Name: name, Input: input}
}

func NewToolResultBlock(toolUseID, content string, isError bool) ToolResultBlock {
	return ToolResultBlock{ToolUseID: toolUseID, Content: content, IsError: isError}
}

func (b TextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{KindText, b.Text})
}

func (b ToolUseBlock) MarshalJSON() ([]byte, error) {
	input := b.Input
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}
	return json.Marshal(struct {
		Type  string          `json:"type"`
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input"`
	}{KindToolUse, b.ID, b.Name, input})
}

func (b ToolResultBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		ToolUseID string `json:"tool_use_id"`
		Content   string `json:"content"`
		IsError   bool   `json:"is_error,omitempty"`
	}{KindToolResult, b.ToolUseID, b.Content, b.IsError})
}

// DecodeBlock decodes one wire block, dispatching on its "type" field.
// Unknown kinds are rejected.
func DecodeBlock(raw json.RawMessage) (ContentBlock, error) {
	var probe struct {
		Type      string          `json:"type"`
		Text      string          `json:"text"`
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Input     json.RawMessage `json:"input"`
		ToolUseID string          `json:"tool_use_id"`
		Content   string          `json:"content"`
		IsError   bool            `json:"is_error"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	switch probe.Type {
	case KindText:
		return NewTextBlock(probe.Text), nil
	case KindToolUse:
		return NewToolUseBlock(probe.ID, probe.Name, probe.Input), nil
	case KindToolResult:
		return NewToolResultBlock(probe.ToolUseID, probe.Content, probe.IsError), nil
	}
	return nil, fmt.Errorf("unknown content block type %q", probe.Type)
}

// DecodeBlocks decodes a JSON array of blocks preserving order.
func DecodeBlocks(raw json.RawMessage) ([]ContentBlock, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]ContentBlock, 0, len(items))
	for i, item := range items {
		b, err := DecodeBlock(item)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}
