package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTerminalIsDark(t *testing.T) {
	t.Setenv("COLORFGBG", "15;0")
	t.Setenv("STORYLINE_DARK_MODE", "")
	assert.True(t, TerminalIsDark())

	t.Setenv("COLORFGBG", "0;15")
	assert.False(t, TerminalIsDark())

	t.Setenv("COLORFGBG", "")
	t.Setenv("STORYLINE_DARK_MODE", "1")
	assert.True(t, TerminalIsDark())
}

func TestThemeFor(t *testing.T) {
	assert.True(t, ThemeFor(true).IsDark)
	assert.False(t, ThemeFor(false).IsDark)
	assert.Equal(t, DarkPrimary, NewStyles(DarkTheme()).Theme.Primary)
}

func TestLayoutConfig(t *testing.T) {
	l := NewLayoutConfig(10, 5)
	assert.Equal(t, MinimumTerminalWidth, l.TerminalWidth)
	assert.Equal(t, MinimumTerminalHeight, l.TerminalHeight)
	assert.True(t, l.IsCompact)

	l = NewLayoutConfig(120, 40)
	assert.False(t, l.IsCompact)
	assert.Equal(t, 116, l.ContentWidth())
	assert.Equal(t, 34, l.ContentHeight())
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "plain words", PlainText("  plain words "))
	assert.Equal(t, "Hello world & friends", PlainText("<p>Hello <b>world</b></p>&amp; friends"))
	assert.Equal(t, "line one line two", PlainText("line one<br/>line two"))
	assert.Equal(t, "", PlainText("<script></script>"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "héé...", Truncate("hééllo", 3))
}

func TestFormatCreated(t *testing.T) {
	now := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	got := FormatCreated(now.Add(-72*time.Hour), now)
	assert.True(t, strings.HasSuffix(got, "(3 days ago)"), got)
	assert.Equal(t, "unknown date", FormatCreated(time.Time{}, now))
}

func TestMarkdown(t *testing.T) {
	out := Markdown("# Title\n\nSome *text*.", "notty", 40)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "text")
}

func TestRenderDivider(t *testing.T) {
	s := NewStyles(LightTheme())
	assert.Contains(t, s.RenderDivider(3), "───")
}
