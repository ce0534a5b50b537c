package planner

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// MessagesClient captures the subset of the Anthropic SDK client this
// adapter needs, so tests can pass a fake in place of *sdk.MessageService.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// AnthropicOptions configures the reference adapter.
type AnthropicOptions struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

// AnthropicPlanner is a reference concrete Planner backed by the
// Anthropic Messages API. It is not on the orchestrator's default path;
// planner adapters are swappable, this is one example wiring.
type AnthropicPlanner struct {
	client  MessagesClient
	options AnthropicOptions
}

// NewAnthropicPlanner builds an AnthropicPlanner from a Messages client
// and options.
func NewAnthropicPlanner(client MessagesClient, options AnthropicOptions) (*AnthropicPlanner, error) {
	if client == nil {
		return nil, errors.New("planner: anthropic client is required")
	}
	if options.Model == "" {
		return nil, errors.New("planner: anthropic model identifier is required")
	}
	if options.MaxTokens <= 0 {
		options.MaxTokens = 1024
	}
	return &AnthropicPlanner{client: client, options: options}, nil
}

// NewAnthropicPlannerFromAPIKey constructs an AnthropicPlanner using the
// default Anthropic HTTP client.
func NewAnthropicPlannerFromAPIKey(apiKey string, options AnthropicOptions) (*AnthropicPlanner, error) {
	if apiKey == "" {
		return nil, errors.New("planner: api key is required")
	}
	client := sdk.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicPlanner(&client.Messages, options)
}

func (p *AnthropicPlanner) Generate(ctx context.Context, messages []Message) (string, error) {
	var systemPrompt strings.Builder
	sdkMessages := make([]sdk.MessageParam, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			if systemPrompt.Len() > 0 {
				systemPrompt.WriteString("\n")
			}
			systemPrompt.WriteString(m.Content)
		case RoleUser, RoleTool:
			sdkMessages = append(sdkMessages, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		case RoleAssistant:
			sdkMessages = append(sdkMessages, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		}
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(p.options.Model),
		MaxTokens: p.options.MaxTokens,
		Messages:  sdkMessages,
	}
	if systemPrompt.Len() > 0 {
		params.System = []sdk.TextBlockParam{{Text: systemPrompt.String()}}
	}

	resp, err := p.client.New(ctx, params)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Text != "" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}
