package prompts

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/cardsmith/internal/errors"
)

func TestDefault_EveryStyleResolves(t *testing.T) {
	c := Default()
	styles := c.Styles()
	require.Len(t, styles, 2)

	for _, name := range styles {
		p, err := c.Prompt(name)
		require.NoError(t, err, "style %q", name)
		require.NotEmpty(t, p, "style %q", name)
	}
}

func TestStyles_OrderAndCopy(t *testing.T) {
	c := NewCatalog(
		Style{Name: "b", Prompt: "second letter"},
		Style{Name: "a", Prompt: "first letter"},
	)
	styles := c.Styles()
	require.Equal(t, []string{"b", "a"}, styles)

	styles[0] = "mutated"
	require.Equal(t, []string{"b", "a"}, c.Styles())
}

func TestNewCatalog_SkipsInvalidAndDuplicates(t *testing.T) {
	c := NewCatalog(
		Style{Name: "", Prompt: "no name"},
		Style{Name: "blank", Prompt: "   "},
		Style{Name: "ok", Prompt: "first"},
		Style{Name: "ok", Prompt: "second"},
	)
	require.Equal(t, []string{"ok"}, c.Styles())

	p, err := c.Prompt("ok")
	require.NoError(t, err)
	require.Equal(t, "first", p)
}

func TestPrompt_UnknownStyle(t *testing.T) {
	_, err := Default().Prompt("Watercolor")
	require.True(t, errors.Is(err, errors.ErrUnknownStyle), "got %v", err)
}

func TestResolve(t *testing.T) {
	c := NewCatalog(Style{Name: "style-A", Prompt: "prompt A"})

	tests := []struct {
		name    string
		sel     Selection
		want    string
		errCode errors.ErrorCode
	}{
		{"preset", Selection{Mode: ModePreset, Style: "style-A"}, "prompt A", ""},
		{"empty mode means preset", Selection{Style: "style-A"}, "prompt A", ""},
		{"preset unknown", Selection{Mode: ModePreset, Style: "nope"}, "", errors.ErrUnknownStyle},
		{"custom verbatim", Selection{Mode: ModeCustom, Custom: "  draw a cat  "}, "  draw a cat  ", ""},
		{"custom empty accepted", Selection{Mode: ModeCustom}, "", ""},
		{"custom ignores style", Selection{Mode: ModeCustom, Style: "nope", Custom: "x"}, "x", ""},
		{"bad mode", Selection{Mode: "other"}, "", errors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Resolve(tt.sel)
			if tt.errCode != "" {
				require.True(t, errors.Is(err, tt.errCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestStyleLabel(t *testing.T) {
	require.Equal(t, "style-A", StyleLabel(Selection{Mode: ModePreset, Style: "style-A"}))
	require.Equal(t, CustomStyle, StyleLabel(Selection{Mode: ModeCustom, Style: "style-A"}))
}
