package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic implements Generator with the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic builds an Anthropic generator. Retries are disabled: a failed
// call is surfaced immediately and the user decides whether to try again.
func NewAnthropic(s Settings) (*Anthropic, error) {
	if s.APIKey == "" {
		return nil, errors.New("anthropic api key missing")
	}
	opts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(s.APIKey),
		anthropicopt.WithMaxRetries(0),
	}
	if s.BaseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(s.BaseURL))
	}
	if s.HTTPClient != nil {
		opts = append(opts, anthropicopt.WithHTTPClient(s.HTTPClient))
	}
	model := s.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &Anthropic{client: anthropic.NewClient(opts...), model: model}, nil
}

// Generate sends one user message under systemPrompt and returns the first
// text block of the reply verbatim.
func (a *Anthropic) Generate(ctx context.Context, systemPrompt, userInput string) Result {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   MaxTokens,
		Temperature: anthropic.Float(Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userInput)),
		},
	}
	// The API rejects empty system text blocks; an empty custom prompt means "no system prompt".
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Failure(err.Error())
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return Success(block.Text)
		}
	}
	return Failure("anthropic: response contained no text content")
}
