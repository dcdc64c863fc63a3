package llm

import (
	"context"
	"fmt"
	"html"
)

// Mock is an offline placeholder that draws the user input onto a fixed card
// without calling any external model. Useful for local UI work.
type Mock struct{}

// Generate returns a 400x600 gradient card containing userInput.
func (Mock) Generate(ctx context.Context, _ string, userInput string) Result {
	if err := ctx.Err(); err != nil {
		return Failure(err.Error())
	}
	return Success(fmt.Sprintf(mockCard, html.EscapeString(userInput)))
}

const mockCard = `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="600" viewBox="0 0 400 600">
  <defs>
    <linearGradient id="bg" x1="0" y1="0" x2="1" y2="1">
      <stop offset="0%%" stop-color="#667eea"/>
      <stop offset="100%%" stop-color="#764ba2"/>
    </linearGradient>
  </defs>
  <rect width="400" height="600" rx="12" fill="url(#bg)"/>
  <text x="200" y="300" fill="#fff" font-size="20" text-anchor="middle">%s</text>
</svg>`
