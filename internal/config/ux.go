package config

// UIConfig holds interactive shell settings.
type UIConfig struct {
	// Theme is "auto", "light" or "dark". auto checks COLORFGBG.
	Theme string `yaml:"theme"`

	// StartPath is the location the shell opens on, e.g. "#/about".
	StartPath string `yaml:"start_path"`

	// MarkdownStyle is passed to glamour ("auto", "dark", "light", "notty").
	MarkdownStyle string `yaml:"markdown_style"`

	// WordWrap is the glamour wrap width for story descriptions and the about page.
	WordWrap int `yaml:"word_wrap"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() UIConfig {
	return UIConfig{
		Theme:         "auto",
		StartPath:     "#/",
		MarkdownStyle: "auto",
		WordWrap:      80,
	}
}

// IsDark resolves the configured theme; auto defers to the caller's detection.
func (u UIConfig) IsDark(detected bool) bool {
	switch u.Theme {
	case "dark":
		return true
	case "light":
		return false
	default:
		return detected
	}
}
