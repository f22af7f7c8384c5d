package finder

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func withColorProfile(t *testing.T, p termenv.Profile) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(p)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func TestHighlight_PreservesText(t *testing.T) {
	withColorProfile(t, termenv.Ascii)

	inputs := []string{
		"",
		"state = new",
		`name ~ "big one" and  shiny = true`,
		"state in (new, used) order by id desc",
		`name = "unterminated`,
		`name = "a \"b\" c" and id = 1`,
		`name = 'it\'s' or name = "日本"`,
		`name = "trailing \`,
		"created >= -7d or created < 2024-01-15",
		"id = 1 @ junk",
	}

	for _, input := range inputs {
		require.Equal(t, input, Highlight(input))
	}
}

func TestHighlight_Styles(t *testing.T) {
	withColorProfile(t, termenv.ANSI256)

	out := Highlight("state = new and id > 3")
	require.Contains(t, out, "\x1b[")
	require.Contains(t, out, KeywordStyle.Render("and"))
	require.Contains(t, out, FieldStyle.Render("state"))
	require.Contains(t, out, LiteralStyle.Render("3"))

	// "new" is a value, so it stays unstyled.
	require.True(t, strings.Contains(out, " new "))
}

func TestIsOperationText(t *testing.T) {
	require.True(t, IsOperationText("state = new"))
	require.True(t, IsOperationText("ALL"))
	require.True(t, IsOperationText("not shiny = true"))
	require.True(t, IsOperationText("order by id"))
	require.False(t, IsOperationText("gear"))
	require.False(t, IsOperationText("big gear"))
}
