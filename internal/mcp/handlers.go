package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/cardsmith/internal/card"
	"github.com/hpungsan/cardsmith/internal/errors"
	"github.com/hpungsan/cardsmith/internal/llm"
	"github.com/hpungsan/cardsmith/internal/prompts"
	"github.com/hpungsan/cardsmith/internal/session"
)

// defaultHistoryLimit applies when card_history is called without a limit.
const defaultHistoryLimit = 20

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	sess    *session.Session
	catalog *prompts.Catalog
	gen     llm.Generator
}

// NewHandlers creates a new Handlers instance bound to one session.
func NewHandlers(sess *session.Session, catalog *prompts.Catalog, gen llm.Generator) *Handlers {
	return &Handlers{sess: sess, catalog: catalog, gen: gen}
}

// GenerateRequest represents the arguments for card_generate.
type GenerateRequest struct {
	Style        string `json:"style,omitempty"`
	CustomPrompt string `json:"custom_prompt,omitempty"`
	UserInput    string `json:"user_input"`
}

// HistoryRequest represents the arguments for card_history.
type HistoryRequest struct {
	Limit *int `json:"limit,omitempty"`
}

// CurrentRequest represents the arguments for card_current.
type CurrentRequest struct {
	ID string `json:"id,omitempty"`
}

// StyleEntry is one preset in the card_styles output.
type StyleEntry struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// CardOutput describes a record. Markup is left out of listings.
type CardOutput struct {
	Number        int    `json:"number"`
	ID            string `json:"id"`
	Timestamp     string `json:"timestamp"`
	Style         string `json:"style"`
	UserInput     string `json:"user_input"`
	DisplayHeight int    `json:"display_height"`
	Filename      string `json:"filename"`
	Markup        string `json:"markup,omitempty"`
}

// HistoryOutput is the card_history result.
type HistoryOutput struct {
	Items []CardOutput `json:"items"`
	Total int          `json:"total"`
}

func cardOutput(rec session.Record, withMarkup bool) CardOutput {
	out := CardOutput{
		Number:        rec.Number,
		ID:            rec.ID,
		Timestamp:     rec.Timestamp,
		Style:         rec.Style,
		UserInput:     rec.UserInput,
		DisplayHeight: card.DisplayHeight(rec.Markup),
		Filename:      card.Filename(rec.Timestamp),
	}
	if withMarkup {
		out.Markup = rec.Markup
	}
	return out
}

// HandleStyles handles the card_styles tool.
func (h *Handlers) HandleStyles(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := h.catalog.Styles()
	out := make([]StyleEntry, 0, len(names))
	for _, name := range names {
		p, err := h.catalog.Prompt(name)
		if err != nil {
			return errorResult(err), nil
		}
		out = append(out, StyleEntry{Name: name, Prompt: p})
	}
	return successResult(map[string]any{"styles": out})
}

// HandleGenerate handles the card_generate tool.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(input.UserInput) == "" {
		return errorResult(errors.NewInvalidRequest("user_input is required")), nil
	}

	sel := prompts.Selection{Mode: prompts.ModePreset, Style: input.Style}
	if input.CustomPrompt != "" {
		sel = prompts.Selection{Mode: prompts.ModeCustom, Custom: input.CustomPrompt}
	} else if sel.Style == "" {
		if styles := h.catalog.Styles(); len(styles) > 0 {
			sel.Style = styles[0]
		}
	}

	systemPrompt, err := h.catalog.Resolve(sel)
	if err != nil {
		return errorResult(err), nil
	}

	rec, err := h.sess.Generate(ctx, h.gen, prompts.StyleLabel(sel), systemPrompt, input.UserInput)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(cardOutput(rec, true))
}

// HandleHistory handles the card_history tool.
func (h *Handlers) HandleHistory(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	limit := defaultHistoryLimit
	if input.Limit != nil {
		if *input.Limit < 0 {
			return errorResult(errors.NewInvalidRequest("limit must not be negative")), nil
		}
		limit = *input.Limit
	}

	snap := h.sess.Snapshot()
	total := len(snap.History)
	items := make([]CardOutput, 0)
	for i, rec := range snap.Reversed() {
		if limit > 0 && i >= limit {
			break
		}
		items = append(items, cardOutput(rec, false))
	}
	return successResult(HistoryOutput{Items: items, Total: total})
}

// HandleCurrent handles the card_current tool.
func (h *Handlers) HandleCurrent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CurrentRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	snap := h.sess.Snapshot()
	if input.ID == "" {
		last, ok := snap.Latest()
		if !snap.HasCurrent || !ok {
			return errorResult(errors.NewNotFound("current")), nil
		}
		return successResult(cardOutput(last, true))
	}

	for _, rec := range snap.History {
		if rec.ID == input.ID {
			return successResult(cardOutput(rec, true))
		}
	}
	return errorResult(errors.NewNotFound(input.ID)), nil
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var cErr *errors.CardError
	if stderrors.As(err, &cErr) && cErr.Code != errors.ErrInternal {
		errorObj := map[string]any{
			"code":    cErr.Code,
			"message": cErr.Message,
			"status":  cErr.Status,
		}
		if cErr.Details != nil {
			errorObj["details"] = cErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
