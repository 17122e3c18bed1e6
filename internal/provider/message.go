package provider

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/dora-assist/memory"
	"github.com/petasbytes/dora-assist/tools"
)

// WireMessage is one entry of the provider-facing message log. Content is
// plain Text when Blocks is nil, otherwise the ordered Blocks.
type WireMessage struct {
	Role   memory.Role
	Text   string
	Blocks []ContentBlock
}

// IsPlain reports whether the message carries plain text content.
func (m WireMessage) IsPlain() bool { return m.Blocks == nil }

func (m WireMessage) MarshalJSON() ([]byte, error) {
	var content any = m.Text
	if !m.IsPlain() {
		content = m.Blocks
	}
	return json.Marshal(struct {
		Role    memory.Role `json:"role"`
		Content any         `json:"content"`
	}{m.Role, content})
}

func (m *WireMessage) UnmarshalJSON(b []byte) error {
	var raw struct {
		Role    memory.Role     `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := WireMessage{Role: raw.Role}
	switch c := bytes.TrimSpace(raw.Content); {
	case len(c) == 0 || string(c) == "null":
	case c[0] == '"':
		if err := json.Unmarshal(c, &out.Text); err != nil {
			return err
		}
	case c[0] == '[':
		blocks, err := DecodeBlocks(c)
		if err != nil {
			return err
		}
		out.Blocks = blocks
	default:
		return fmt.Errorf("content must be a string or an array")
	}
	*m = out
	return nil
}

// FromMemory converts UI messages into plain-text wire messages.
func FromMemory(msgs []memory.Message) []WireMessage {
	out := make([]WireMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, WireMessage{Role: m.Role, Text: m.Text})
	}
	return out
}

// AssistantToolMessage replays a tool round back to the provider: non-empty
// text blocks first, then tool_use blocks, each group in the order received.
func AssistantToolMessage(resp *Response) WireMessage {
	var texts, uses []ContentBlock
	for _, b := range resp.Blocks {
		switch v := b.(type) {
		case TextBlock:
			if v.Text != "" {
				texts = append(texts, v)
			}
		case ToolUseBlock:
			uses = append(uses, v)
		}
	}
	blocks := make([]ContentBlock, 0, len(texts)+len(uses))
	blocks = append(blocks, texts...)
	blocks = append(blocks, uses...)
	return WireMessage{Role: memory.RoleAssistant, Blocks: blocks}
}

// ToolResultsMessage wraps tool results, in call order, as one user message.
func ToolResultsMessage(results []tools.Result) WireMessage {
	blocks := make([]ContentBlock, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, NewToolResultBlock(r.ToolUseID, r.Content, r.IsError))
	}
	return WireMessage{Role: memory.RoleUser, Blocks: blocks}
}
