package ui

// Layout constants for the shell frame
const (
	HeaderHeight = 1
	NavHeight    = 2
	FooterHeight = 1

	ContentPaddingH = 2
	ContentPaddingV = 1

	MinimumTerminalWidth  = 60
	MinimumTerminalHeight = 16
	CompactModeWidth      = 90

	// Story cards truncate descriptions to this many runes.
	CardDescriptionRunes = 150
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	if width < MinimumTerminalWidth {
		width = MinimumTerminalWidth
	}
	if height < MinimumTerminalHeight {
		height = MinimumTerminalHeight
	}
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
	}
}

// ContentWidth is the width available to a page.
func (l LayoutConfig) ContentWidth() int {
	return l.TerminalWidth - ContentPaddingH*2
}

// ContentHeight is the height available to a page below the header, nav and footer.
func (l LayoutConfig) ContentHeight() int {
	return l.TerminalHeight - HeaderHeight - NavHeight - FooterHeight - ContentPaddingV*2
}
