package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Adaptive colors for dark/light terminals
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorBorder    = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorStatusBg  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#16213E"}
	colorStatusFg  = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorGreen     = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorGold      = lipgloss.AdaptiveColor{Light: "#C08A00", Dark: "#FFD700"}

	// Card border deepens with the summary level
	levelBorders = map[int]lipgloss.AdaptiveColor{
		1: {Light: "#5A56E0", Dark: "#7571F9"},
		2: {Light: "#0487B5", Dark: "#00E5FF"},
		3: {Light: "#C08A00", Dark: "#FFD700"},
	}

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	cardMetaStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	cardAuthorStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	cardBodyStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	levelBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1).
			Bold(true)

	savedBadgeStyle = lipgloss.NewStyle().
			Foreground(colorGold).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	itemTitleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	itemMetaStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	chatUserStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	chatAssistantStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBg).
			Foreground(colorStatusFg).
			PaddingLeft(1).
			PaddingRight(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	chatPromptStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	helpDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)
)

func levelBorder(level int) lipgloss.AdaptiveColor {
	if c, ok := levelBorders[level]; ok {
		return c
	}
	return colorBorder
}
