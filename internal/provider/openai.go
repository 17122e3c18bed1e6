package provider

import (
	"context"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/petasbytes/dora-assist/memory"
)

// OpenAIOptions configure the OpenAI-compatible adapter.
type OpenAIOptions struct {
	Model               string
	MaxCompletionTokens int64
	BaseURL             string
	HTTPClient          *http.Client
}

// OpenAI speaks the Chat Completions API, including compatible gateways.
type OpenAI struct {
	client openai.Client
	opts   OpenAIOptions
}

var _ Provider = (*OpenAI)(nil)

// NewOpenAI creates the adapter. The API key is supplied per request.
func NewOpenAI(optFns ...func(o *OpenAIOptions)) *OpenAI {
	opts := OpenAIOptions{
		Model:               openai.ChatModelGPT4oMini,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &OpenAI{client: openai.NewClient(clientOpts...), opts: opts}
}

func (o *OpenAI) Name() string { return "openai" }

// Send performs one chat completion call.
func (o *OpenAI) Send(ctx context.Context, req Request) (*Response, error) {
	if req.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	params := openai.ChatCompletionNewParams{
		Messages:            openAIMessages(req),
		Model:               o.opts.Model,
		MaxCompletionTokens: openai.Int(o.opts.MaxCompletionTokens),
	}
	if len(req.Tools) > 0 {
		defs := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, t := range req.Tools {
			defs[i] = openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        t.Name,
					Description: openai.String(t.Description),
					Parameters:  t.InputSchema,
				},
			}
		}
		params.Tools = defs
	}

	httpClient, ex := recordingClient(o.opts.HTTPClient)
	completion, err := o.client.Chat.Completions.New(ctx, params,
		option.WithAPIKey(req.APIKey),
		option.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, classify(err, ex)
	}
	return fromOpenAI(completion), nil
}

// openAIMessages flattens the wire log. Tool results become one tool message
// each, in order; assistant tool rounds become tool_calls.
func openAIMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		out = append(out, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.IsPlain() {
			if m.Role == memory.RoleAssistant {
				out = append(out, openai.AssistantMessage(m.Text))
			} else {
				out = append(out, openai.UserMessage(m.Text))
			}
			continue
		}

		var text strings.Builder
		var calls []openai.ChatCompletionMessageToolCallParam
		for _, b := range m.Blocks {
			switch v := b.(type) {
			case TextBlock:
				text.WriteString(v.Text)
			case ToolUseBlock:
				args := string(v.Input)
				if args == "" {
					args = "{}"
				}
				calls = append(calls, openai.ChatCompletionMessageToolCallParam{
					ID:   v.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      v.Name,
						Arguments: args,
					},
				})
			case ToolResultBlock:
				out = append(out, openai.ToolMessage(v.Content, v.ToolUseID))
			}
		}
		switch {
		case m.Role == memory.RoleAssistant && len(calls) > 0:
			asst := openai.ChatCompletionAssistantMessageParam{Role: "assistant", ToolCalls: calls}
			if text.Len() > 0 {
				asst.Content = openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(text.String())}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		case text.Len() > 0 && m.Role == memory.RoleAssistant:
			out = append(out, openai.AssistantMessage(text.String()))
		case text.Len() > 0:
			out = append(out, openai.UserMessage(text.String()))
		}
	}
	return out
}

func fromOpenAI(c *openai.ChatCompletion) *Response {
	resp := &Response{
		Usage: Usage{
			InputTokens:  c.Usage.PromptTokens,
			OutputTokens: c.Usage.CompletionTokens,
		},
	}
	if len(c.Choices) == 0 {
		return resp
	}
	ch := c.Choices[0]
	resp.StopReason = openAIStopReason(ch.FinishReason)
	if ch.Message.Content != "" {
		resp.Blocks = append(resp.Blocks, NewTextBlock(ch.Message.Content))
	}
	for _, tc := range ch.Message.ToolCalls {
		resp.Blocks = append(resp.Blocks, NewToolUseBlock(tc.ID, tc.Function.Name, []byte(tc.Function.Arguments)))
	}
	return resp
}

func openAIStopReason(finish string) string {
	switch finish {
	case "stop":
		return StopEndTurn
	case "tool_calls", "function_call":
		return StopToolUse
	case "length":
		return StopMaxTokens
	}
	return finish
}
