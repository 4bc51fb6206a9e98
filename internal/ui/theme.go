package ui

import "github.com/charmbracelet/lipgloss"

// exmachina's color palette: brass, slate and signal colors.
var (
	// Primary colors
	Brass    = lipgloss.Color("#B5A642")
	Amber    = lipgloss.Color("#FFBF00")
	Copper   = lipgloss.Color("#B87333")
	Slate    = lipgloss.Color("#708090")
	Emerald  = lipgloss.Color("#50C878")
	Ruby     = lipgloss.Color("#E0115F")
	Sapphire = lipgloss.Color("#0F52BA")
	Dim      = lipgloss.Color("#666666")
	Bright   = lipgloss.Color("#FFFFFF")

	// Semantic styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Brass)

	Subtitle = lipgloss.NewStyle().
			Foreground(Amber)

	Success = lipgloss.NewStyle().
		Foreground(Emerald)

	Error = lipgloss.NewStyle().
		Foreground(Ruby)

	Warning = lipgloss.NewStyle().
		Foreground(Amber)

	Info = lipgloss.NewStyle().
		Foreground(Sapphire)

	Muted = lipgloss.NewStyle().
		Foreground(Dim)

	Accent = lipgloss.NewStyle().
		Foreground(Brass).
		Bold(true)

	// Component styles
	Tag = lipgloss.NewStyle().
		Foreground(Bright).
		Background(Copper).
		Padding(0, 1).
		Bold(true)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Bright)

	SourceStyle = lipgloss.NewStyle().
			Foreground(Slate)
)

// Icon constants.
const (
	IconHook     = "🪝 "
	IconAction   = "▶ "
	IconFilter   = "⧖ "
	IconPlugin   = "📦"
	IconSettings = "⚙ "
	IconWarn     = "⚠️ "
	IconError    = "✗ "
	IconOk       = "✓ "
	IconArrow    = "→"
	IconDot      = "·"
)
