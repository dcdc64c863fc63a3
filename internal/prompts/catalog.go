// Package prompts holds the style catalog: named system prompts that define
// how a card is written and drawn, plus the free-form custom mode.
package prompts

import (
	"strings"

	"github.com/hpungsan/cardsmith/internal/errors"
)

// Mode selects where the system prompt comes from.
type Mode string

const (
	ModePreset Mode = "preset"
	ModeCustom Mode = "custom"
)

// CustomStyle is the style label recorded for custom-mode generations.
const CustomStyle = "custom"

// Style is one named catalog entry.
type Style struct {
	Name   string
	Prompt string
}

// Selection is the caller's choice of system prompt.
type Selection struct {
	Mode   Mode
	Style  string // preset mode
	Custom string // custom mode, used verbatim
}

// Catalog is an immutable, ordered mapping from style name to system prompt.
type Catalog struct {
	order  []string
	byName map[string]string
}

// NewCatalog builds a catalog from styles, keeping their order.
// Entries with an empty name or prompt are skipped; a repeated name keeps the first entry.
func NewCatalog(styles ...Style) *Catalog {
	c := &Catalog{byName: make(map[string]string, len(styles))}
	for _, s := range styles {
		if s.Name == "" || strings.TrimSpace(s.Prompt) == "" {
			continue
		}
		if _, dup := c.byName[s.Name]; dup {
			continue
		}
		c.order = append(c.order, s.Name)
		c.byName[s.Name] = s.Prompt
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return NewCatalog(defaultStyles...)
}

// Styles returns the style names in catalog order.
func (c *Catalog) Styles() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Prompt returns the system prompt for name.
func (c *Catalog) Prompt(name string) (string, error) {
	p, ok := c.byName[name]
	if !ok {
		return "", errors.NewUnknownStyle(name)
	}
	return p, nil
}

// Resolve returns the system prompt for sel. Custom text is accepted as-is,
// including the empty string.
func (c *Catalog) Resolve(sel Selection) (string, error) {
	switch sel.Mode {
	case ModePreset, "":
		return c.Prompt(sel.Style)
	case ModeCustom:
		return sel.Custom, nil
	default:
		return "", errors.NewInvalidRequest("mode must be preset or custom")
	}
}

// StyleLabel is the name recorded on a generation for sel.
func StyleLabel(sel Selection) string {
	if sel.Mode == ModeCustom {
		return CustomStyle
	}
	return sel.Style
}
