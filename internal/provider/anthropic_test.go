package provider_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/dora-assist/internal/provider"
	"github.com/petasbytes/dora-assist/memory"
	"github.com/petasbytes/dora-assist/tools"
)

func newAnthropic(baseURL string) *provider.Anthropic {
	return provider.NewAnthropic(func(o *provider.AnthropicOptions) {
		o.BaseURL = baseURL
		o.Model = "claude-test"
	})
}

func userRequest(text string) provider.Request {
	return provider.Request{
		APIKey:   "test-key",
		Messages: []provider.WireMessage{{Role: memory.RoleUser, Text: text}},
	}
}

func TestAnthropic_TextResponse(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, `{
		"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
		"content":[{"type":"text","text":"Two dataflows are running."}],
		"stop_reason":"end_turn",
		"usage":{"input_tokens":12,"output_tokens":6}
	}`)

	req := userRequest("what is running?")
	req.System = "be brief"
	resp, err := newAnthropic(srv.URL).Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Two dataflows are running."}, resp.Texts())
	assert.True(t, resp.NaturalEnd())
	assert.Equal(t, provider.Usage{InputTokens: 12, OutputTokens: 6}, resp.Usage)

	got := srv.lastRequest(t)
	assert.Equal(t, "/v1/messages", got.Path)
	assert.Equal(t, "test-key", got.Header.Get("X-Api-Key"))
	assert.Equal(t, provider.APIVersion, got.Header.Get("Anthropic-Version"))
	assert.Equal(t, "claude-test", got.Body["model"])
	assert.Equal(t, float64(4096), got.Body["max_tokens"])
	assert.NotContains(t, got.Body, "tools")
	assert.Contains(t, string(got.Raw), `"be brief"`)
}

func TestAnthropic_ToolUseDecodingAndCatalog(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, `{
		"id":"msg_2","type":"message","role":"assistant",
		"content":[
			{"type":"text","text":"Checking."},
			{"type":"tool_use","id":"tu_1","name":"dora_list","input":{}},
			{"type":"tool_use","id":"tu_2","name":"read_file","input":{"path":"flow.yml"}}
		],
		"stop_reason":"tool_use","usage":{"input_tokens":1,"output_tokens":1}
	}`)

	req := userRequest("inspect")
	req.Tools = []tools.ToolDefinition{{
		Name:        "read_file",
		Description: "read",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"path": map[string]any{"type": "string"}},
			"required":   []any{"path"},
		},
	}}
	resp, err := newAnthropic(srv.URL).Send(context.Background(), req)
	require.NoError(t, err)

	calls := resp.ToolCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "tu_1", calls[0].ID)
	assert.Equal(t, "read_file", calls[1].Name)
	assert.JSONEq(t, `{"path":"flow.yml"}`, string(calls[1].Input))
	assert.False(t, resp.NaturalEnd())

	body := srv.lastRequest(t).Body
	toolList, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, toolList, 1)
	tool := toolList[0].(map[string]any)
	assert.Equal(t, "read_file", tool["name"])
	schema := tool["input_schema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"path"}, schema["required"])
}

// The assistant tool round and the following results are sent back in order.
func TestAnthropic_EncodesToolRoundTrip(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, `{"content":[{"type":"text","text":"done"}],"stop_reason":"end_turn"}`)

	round := &provider.Response{Blocks: []provider.ContentBlock{
		provider.NewTextBlock("Checking."),
		provider.NewToolUseBlock("tu_1", "dora_list", json.RawMessage(`{}`)),
		provider.NewToolUseBlock("tu_2", "read_file", json.RawMessage(`{"path":"flow.yml"}`)),
	}}
	assistant := provider.AssistantToolMessage(round)
	results := provider.ToolResultsMessage([]tools.Result{
		{ToolUseID: "tu_1", Content: "[]"},
		{ToolUseID: "tu_2", Content: "nope", IsError: true},
	})

	req := userRequest("inspect")
	req.Messages = append(req.Messages, assistant, results)
	_, err := newAnthropic(srv.URL).Send(context.Background(), req)
	require.NoError(t, err)

	var sent struct {
		Messages []struct {
			Role    string           `json:"role"`
			Content []map[string]any `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(srv.lastRequest(t).Raw, &sent))
	require.Len(t, sent.Messages, 3)

	// Plain text goes out as a single text block.
	require.Len(t, sent.Messages[0].Content, 1)
	assert.Equal(t, "text", sent.Messages[0].Content[0]["type"])
	assert.Equal(t, "inspect", sent.Messages[0].Content[0]["text"])

	var kinds, ids []string
	for _, b := range sent.Messages[1].Content {
		kinds = append(kinds, b["type"].(string))
		if id, ok := b["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	assert.Equal(t, "assistant", sent.Messages[1].Role)
	assert.Equal(t, []string{"text", "tool_use", "tool_use"}, kinds)
	assert.Equal(t, []string{"tu_1", "tu_2"}, ids)
	assert.Equal(t, map[string]any{"path": "flow.yml"}, sent.Messages[1].Content[2]["input"])

	assert.Equal(t, "user", sent.Messages[2].Role)
	require.Len(t, sent.Messages[2].Content, 2)
	assert.Equal(t, "tool_result", sent.Messages[2].Content[0]["type"])
	assert.Equal(t, "tu_1", sent.Messages[2].Content[0]["tool_use_id"])
	assert.Equal(t, "tu_2", sent.Messages[2].Content[1]["tool_use_id"])
	assert.Equal(t, true, sent.Messages[2].Content[1]["is_error"])
	assert.Contains(t, string(srv.lastRequest(t).Raw), `"nope"`)
}

func TestAnthropic_EmptyContentParses(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, `{"content":[]}`)
	resp, err := newAnthropic(srv.URL).Send(context.Background(), userRequest("hi"))
	require.NoError(t, err)
	assert.Empty(t, resp.Blocks)
	assert.Empty(t, resp.Texts())
	assert.Empty(t, resp.ToolCalls())
}

func TestAnthropic_MissingKeyMakesNoCall(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, `{}`)
	req := userRequest("hi")
	req.APIKey = ""
	_, err := newAnthropic(srv.URL).Send(context.Background(), req)

	var pe *provider.PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "API key")
	assert.Empty(t, srv.calls())
}

func TestAnthropic_ErrorClassification(t *testing.T) {
	t.Run("parsed protocol error", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusBadRequest,
			`{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens: too large"}}`)
		_, err := newAnthropic(srv.URL).Send(context.Background(), userRequest("hi"))
		var pe *provider.ProtocolError
		require.True(t, errors.As(err, &pe), "%T %v", err, err)
		assert.True(t, pe.Parsed)
		assert.Equal(t, "API Error: max_tokens: too large", err.Error())
		assert.Len(t, srv.calls(), 1)
	})

	t.Run("unparsed protocol error is not retried", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusInternalServerError, `upstream exploded`)
		_, err := newAnthropic(srv.URL).Send(context.Background(), userRequest("hi"))
		var pe *provider.ProtocolError
		require.True(t, errors.As(err, &pe), "%T %v", err, err)
		assert.False(t, pe.Parsed)
		assert.Equal(t, "API Error (500): upstream exploded", err.Error())
		assert.Len(t, srv.calls(), 1)
		assert.True(t, provider.IsRetryable(err))
	})

	t.Run("decode error keeps body", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `this is not json`)
		_, err := newAnthropic(srv.URL).Send(context.Background(), userRequest("hi"))
		var de *provider.DecodeError
		require.True(t, errors.As(err, &de), "%T %v", err, err)
		assert.Equal(t, "this is not json", de.Raw)
		assert.Contains(t, err.Error(), "Failed to parse response: ")
		assert.Contains(t, err.Error(), "\nBody: this is not json")
		assert.False(t, provider.IsRetryable(err))
	})

	for name, body := range map[string]string{
		"missing content":   `{"foo":1}`,
		"content not array": `{"content":"oops"}`,
		"null content":      `{"content":null}`,
	} {
		t.Run("malformed 2xx: "+name, func(t *testing.T) {
			srv := newFakeServer(t, http.StatusOK, body)
			resp, err := newAnthropic(srv.URL).Send(context.Background(), userRequest("hi"))
			assert.Nil(t, resp)
			var de *provider.DecodeError
			require.True(t, errors.As(err, &de), "%T %v", err, err)
			assert.Equal(t, body, de.Raw)
			assert.Contains(t, err.Error(), "Failed to parse response: ")
			assert.Contains(t, err.Error(), "\nBody: "+body)
		})
	}

	t.Run("transport error", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `{}`)
		url := srv.URL
		srv.Close()
		_, err := newAnthropic(url).Send(context.Background(), userRequest("hi"))
		var te *provider.TransportError
		require.True(t, errors.As(err, &te), "%T %v", err, err)
		assert.Contains(t, err.Error(), "Network error: ")
	})
}
