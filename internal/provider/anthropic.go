package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/dora-assist/memory"
)

const DefaultModel = "claude-sonnet-4-20250514"
const APIVersion = "2023-06-01"

// AnthropicOptions configure the Anthropic adapter.
type AnthropicOptions struct {
	Model     string
	MaxTokens int64
	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL    string
	HTTPClient *http.Client
}

// Anthropic talks to the Messages API through the official SDK.
type Anthropic struct {
	client anthropic.Client
	opts   AnthropicOptions
}

var _ Provider = (*Anthropic)(nil)

// NewAnthropic creates the adapter. The API key is supplied per request.
func NewAnthropic(optFns ...func(o *AnthropicOptions)) *Anthropic {
	opts := AnthropicOptions{
		Model:     DefaultModel,
		MaxTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	clientOpts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithHeader("anthropic-version", APIVersion),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &Anthropic{client: anthropic.NewClient(clientOpts...), opts: opts}
}

func (a *Anthropic) Name() string { return "anthropic" }

// Send performs one POST /v1/messages call.
func (a *Anthropic) Send(ctx context.Context, req Request) (*Response, error) {
	if req.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.opts.Model),
		MaxTokens: a.opts.MaxTokens,
		Messages:  anthropicMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = anthropicTools(req)
	}

	httpClient, ex := recordingClient(a.opts.HTTPClient)
	msg, err := a.client.Messages.New(ctx, params,
		option.WithAPIKey(req.APIKey),
		option.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, classify(err, ex)
	}
	if _, body, _ := ex.snapshot(); body != nil {
		if err := checkMessageShape(body); err != nil {
			return nil, &DecodeError{Err: err, Raw: string(body)}
		}
	}
	return fromAnthropic(msg), nil
}

// checkMessageShape rejects bodies the SDK decodes leniently: content must be
// present and be an array.
func checkMessageShape(body []byte) error {
	var shape struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		return err
	}
	c := bytes.TrimSpace(shape.Content)
	switch {
	case len(c) == 0:
		return errors.New("missing field `content`")
	case c[0] != '[':
		return fmt.Errorf("content: expected an array, got %s", c)
	}
	return nil
}

func anthropicTools(req Request) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(req.Tools))
	for _, t := range req.Tools {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: t.Properties(),
				Required:   t.Required(),
			},
		}})
	}
	return out
}

func anthropicMessages(msgs []WireMessage) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		var blocks []anthropic.ContentBlockParamUnion
		if m.IsPlain() {
			blocks = []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Text)}
		} else {
			blocks = make([]anthropic.ContentBlockParamUnion, 0, len(m.Blocks))
			for _, b := range m.Blocks {
				switch v := b.(type) {
				case TextBlock:
					blocks = append(blocks, anthropic.NewTextBlock(v.Text))
				case ToolUseBlock:
					input := v.Input
					if len(input) == 0 {
						input = json.RawMessage(`{}`)
					}
					blocks = append(blocks, anthropic.NewToolUseBlock(v.ID, input, v.Name))
				case ToolResultBlock:
					blocks = append(blocks, anthropic.NewToolResultBlock(v.ToolUseID, v.Content, v.IsError))
				}
			}
		}
		if m.Role == memory.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}

func fromAnthropic(msg *anthropic.Message) *Response {
	resp := &Response{
		StopReason: string(msg.StopReason),
		Usage: Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Blocks = append(resp.Blocks, NewTextBlock(v.Text))
		case anthropic.ToolUseBlock:
			// Keep the raw JSON input so tools decode exactly what the model sent.
			input := json.RawMessage(v.JSON.Input.Raw())
			if len(input) == 0 {
				input = json.RawMessage(`{}`)
			}
			resp.Blocks = append(resp.Blocks, NewToolUseBlock(v.ID, v.Name, input))
		}
	}
	return resp
}
