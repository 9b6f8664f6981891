// Package ui provides the visual styling for the storyline shell.
// Light and dark palettes share the same semantic colors.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	LightBackground = lipgloss.Color("#fbf8f3")
	LightForeground = lipgloss.Color("#2b2118")
	LightPrimary    = lipgloss.Color("#b4541b") // terracotta
	LightAccent     = lipgloss.Color("#1f7a8c") // teal
	LightMuted      = lipgloss.Color("#8a7f74")
	LightBorder     = lipgloss.Color("#e0d6c8")
	LightCard       = lipgloss.Color("#ffffff")

	DarkBackground = lipgloss.Color("#1b1612")
	DarkForeground = lipgloss.Color("#f1ebe3")
	DarkPrimary    = lipgloss.Color("#f08a4b")
	DarkAccent     = lipgloss.Color("#5fc2d4")
	DarkMuted      = lipgloss.Color("#8f8478")
	DarkBorder     = lipgloss.Color("#3a3028")
	DarkCard       = lipgloss.Color("#241d18")

	Destructive = lipgloss.Color("#d64541")
	Success     = lipgloss.Color("#4caf50")
	Warning     = lipgloss.Color("#f2b134")
	Info        = lipgloss.Color("#3d8bd9")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
	}
}

func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// TerminalIsDark guesses the terminal background from COLORFGBG
// ("fg;bg", where bg 0-6 or 8 is dark) and STORYLINE_DARK_MODE.
func TerminalIsDark() bool {
	if v := os.Getenv("COLORFGBG"); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			if (bg >= 0 && bg <= 6) || bg == 8 {
				return true
			}
		}
	}
	return os.Getenv("STORYLINE_DARK_MODE") == "1"
}

// ThemeFor returns the dark theme when dark is true.
func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header   lipgloss.Style
	Location lipgloss.Style
	Nav      lipgloss.Style
	NavItem  lipgloss.Style
	NavFocus lipgloss.Style
	Content  lipgloss.Style
	Footer   lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Link     lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Components
	Card     lipgloss.Style
	Selected lipgloss.Style
	Alert    lipgloss.Style
	Label    lipgloss.Style
	Spinner  lipgloss.Style
	Badge    lipgloss.Style
	Divider  lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Location: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Nav: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(theme.Border),

		NavItem: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1),

		NavFocus: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(theme.Accent).
			Padding(0, 1).
			Bold(true),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Link: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Underline(true),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		Card: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		Selected: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		Alert: lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(theme.Primary).
			Foreground(theme.Foreground),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(14),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// DefaultStyles returns styles for the detected terminal background.
func DefaultStyles() Styles {
	return NewStyles(ThemeFor(TerminalIsDark()))
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		width = 1
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
