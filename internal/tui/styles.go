package tui

import "github.com/charmbracelet/lipgloss"

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	GameLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	KeyHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	WinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFD700")).
			Bold(true).
			Padding(0, 2)
)

// Card colours for the classic deck, indexed by the colour feature.
var cardColours = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#B388FF")).Bold(true),
}

// Token colours, one per player, cycling past the end.
var playerColours = []lipgloss.Color{
	lipgloss.Color("#4ECDC4"),
	lipgloss.Color("#FFD700"),
	lipgloss.Color("#FF8C42"),
	lipgloss.Color("#F78FB3"),
	lipgloss.Color("#7D56F4"),
	lipgloss.Color("#96CEB4"),
}

func playerStyle(player int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(playerColours[player%len(playerColours)]).Bold(true)
}

var (
	tileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Width(tileWidth).
			Height(3).
			Padding(0, 1)

	markedTileStyle = tileStyle.
			BorderForeground(lipgloss.Color("#FFD700"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262"))
)

const tileWidth = 24
