package provider_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/dora-assist/internal/provider"
	"github.com/petasbytes/dora-assist/memory"
	"github.com/petasbytes/dora-assist/tools"
)

func TestBlockJSON_Discriminant(t *testing.T) {
	cases := []struct {
		block provider.ContentBlock
		want  string
	}{
		{provider.NewTextBlock("hi"), `{"type":"text","text":"hi"}`},
		{provider.NewToolUseBlock("tu_1", "dora_list", json.RawMessage(`{"a":1}`)), `{"type":"tool_use","id":"tu_1","name":"dora_list","input":{"a":1}}`},
		{provider.NewToolUseBlock("tu_2", "dora_list", nil), `{"type":"tool_use","id":"tu_2","name":"dora_list","input":{}}`},
		{provider.NewToolResultBlock("tu_1", "ok", false), `{"type":"tool_result","tool_use_id":"tu_1","content":"ok"}`},
		{provider.NewToolResultBlock("tu_1", "bad", true), `{"type":"tool_result","tool_use_id":"tu_1","content":"bad","is_error":true}`},
	}
	for _, tc := range cases {
		b, err := json.Marshal(tc.block)
		require.NoError(t, err)
		assert.JSONEq(t, tc.want, string(b))

		back, err := provider.DecodeBlock(b)
		require.NoError(t, err)
		assert.Equal(t, tc.block.Kind(), back.Kind())
	}
}

func TestDecodeBlock_UnknownKind(t *testing.T) {
	_, err := provider.DecodeBlock(json.RawMessage(`{"type":"image"}`))
	assert.ErrorContains(t, err, `unknown content block type "image"`)
}

func TestWireMessage_PlainAndBlocks(t *testing.T) {
	plain := provider.WireMessage{Role: memory.RoleUser, Text: "list flows"}
	b, err := json.Marshal(plain)
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"list flows"}`, string(b))

	var back provider.WireMessage
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, plain, back)
	assert.True(t, back.IsPlain())

	var bad provider.WireMessage
	assert.Error(t, json.Unmarshal([]byte(`{"role":"system","content":"x"}`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"role":"user","content":42}`), &bad))
}

// An assistant tool round must survive encoding and decoding with block order intact.
func TestAssistantToolMessage_RoundTrip(t *testing.T) {
	resp := &provider.Response{Blocks: []provider.ContentBlock{
		provider.NewToolUseBlock("tu_1", "dora_list", json.RawMessage(`{}`)),
		provider.NewTextBlock("Let me check."),
		provider.NewTextBlock(""),
		provider.NewToolUseBlock("tu_2", "read_file", json.RawMessage(`{"path":"flow.yml"}`)),
		provider.NewTextBlock("And the file."),
	}}

	msg := provider.AssistantToolMessage(resp)
	want := []provider.ContentBlock{
		provider.NewTextBlock("Let me check."),
		provider.NewTextBlock("And the file."),
		provider.NewToolUseBlock("tu_1", "dora_list", json.RawMessage(`{}`)),
		provider.NewToolUseBlock("tu_2", "read_file", json.RawMessage(`{"path":"flow.yml"}`)),
	}
	assert.Equal(t, memory.RoleAssistant, msg.Role)
	assert.Equal(t, want, msg.Blocks)

	b, err := json.Marshal(msg)
	require.NoError(t, err)
	var back provider.WireMessage
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, msg, back)
}

func TestToolResultsMessage_OrderAndIDs(t *testing.T) {
	msg := provider.ToolResultsMessage([]tools.Result{
		{ToolUseID: "a", Content: "one"},
		{ToolUseID: "b", Content: "two", IsError: true},
	})
	assert.Equal(t, memory.RoleUser, msg.Role)
	assert.Equal(t, []provider.ContentBlock{
		provider.NewToolResultBlock("a", "one", false),
		provider.NewToolResultBlock("b", "two", true),
	}, msg.Blocks)
}

func TestResponse_Helpers(t *testing.T) {
	resp := &provider.Response{
		StopReason: provider.StopToolUse,
		Blocks: []provider.ContentBlock{
			provider.NewTextBlock("a"),
			provider.NewToolUseBlock("1", "x", nil),
			provider.NewTextBlock("b"),
		},
	}
	assert.Equal(t, []string{"a", "b"}, resp.Texts())
	assert.Equal(t, []provider.ToolCall{{ID: "1", Name: "x"}}, resp.ToolCalls())
	assert.False(t, resp.NaturalEnd())
}

func TestFromMemory(t *testing.T) {
	msgs := provider.FromMemory([]memory.Message{
		memory.NewUserMessage("hi"),
		memory.NewAssistantMessage("hello"),
	})
	assert.Equal(t, []provider.WireMessage{
		{Role: memory.RoleUser, Text: "hi"},
		{Role: memory.RoleAssistant, Text: "hello"},
	}, msgs)
}
