// Package llm wraps the external text-generation APIs that produce card markup.
//
// Every provider answers with a Result rather than an error: failures are
// ordinary, user-visible outcomes that the caller displays and lets the user
// retry, never conditions that should unwind the session.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Fixed generation parameters.
const (
	DefaultAnthropicModel = "claude-3-5-sonnet-20241022"
	DefaultOpenAIModel    = "gpt-4o"
	MaxTokens             = 4096
	Temperature           = 0.7
)

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// Generator turns a system prompt and one user message into markup.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userInput string) Result
}

// Result is the outcome of one generation: Markup on success, Err otherwise.
type Result struct {
	Markup string
	Err    string
}

// OK reports whether the generation succeeded.
func (r Result) OK() bool { return r.Err == "" }

// Success wraps markup returned by a provider.
func Success(markup string) Result {
	return Result{Markup: markup}
}

// Failure wraps a provider failure. An empty message is replaced so a failed
// Result can never be mistaken for a successful one.
func Failure(msg string) Result {
	if strings.TrimSpace(msg) == "" {
		msg = "unknown generation error"
	}
	return Result{Err: msg}
}

// Settings configures a provider.
type Settings struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// New returns the Generator for s.Provider. An empty provider means Anthropic.
func New(s Settings) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", ProviderAnthropic:
		return NewAnthropic(s)
	case ProviderOpenAI:
		return NewOpenAI(s)
	case ProviderMock:
		return Mock{}, nil
	default:
		return nil, fmt.Errorf("llm provider %q not supported", s.Provider)
	}
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, systemPrompt, userInput string) Result

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, systemPrompt, userInput string) Result {
	return f(ctx, systemPrompt, userInput)
}
