package llm

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI implements Generator using the official openai-go SDK (chat completions).
// It serves OpenAI itself and any OpenAI-compatible gateway set via BaseURL.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI builds an OpenAI generator with retries disabled.
func NewOpenAI(s Settings) (*OpenAI, error) {
	if s.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithMaxRetries(0),
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	if s.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(s.HTTPClient))
	}
	model := s.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClient(opts...), model: model}, nil
}

// Generate sends the system prompt and user input and returns the first choice verbatim.
func (o *OpenAI) Generate(ctx context.Context, systemPrompt, userInput string) Result {
	msgs := []openai.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(systemPrompt))
	}
	msgs = append(msgs, openai.UserMessage(userInput))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.model),
		Messages:            msgs,
		MaxCompletionTokens: openai.Int(MaxTokens),
		Temperature:         openai.Float(Temperature),
	})
	if err != nil {
		return Failure(err.Error())
	}
	if len(resp.Choices) == 0 {
		return Failure("openai: empty choices")
	}
	return Success(resp.Choices[0].Message.Content)
}
