package ui

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"
)

// PlainText strips markup from a user-supplied description. Story text is
// free-form and sometimes carries HTML; only its text nodes are kept.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(collapseSpaces(b.String()))
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			switch name, _ := z.TagName(); string(name) {
			case "br", "p", "div", "li":
				b.WriteByte(' ')
			}
		}
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to n runes, appending "..." when it was longer.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "..."
}

// FormatCreated renders a story timestamp as an absolute date plus a
// relative age, e.g. "2 May 2024 (3 days ago)".
func FormatCreated(t, now time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	return t.Local().Format("2 January 2006") + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}

// Markdown renders markdown with glamour. On renderer failure the source is
// returned unchanged.
func Markdown(src, style string, width int) string {
	if style == "" {
		style = "auto"
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return src
	}
	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return strings.TrimRight(out, "\n")
}
