package tui

import (
	"strings"
)

func (a *App) renderChat() string {
	paper, ok := a.engine.Current()
	if !ok {
		return ""
	}

	contentWidth := a.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	var lines []string
	lines = append(lines, "")
	lines = append(lines, "  "+cardTitleStyle.Render(truncateStr(paper.Title, contentWidth)))
	lines = append(lines, "  "+cardMetaStyle.Render(formatAuthors(paper.Authors)))
	lines = append(lines, "")

	if len(a.chatHistory) == 0 {
		lines = append(lines, "  "+cardMetaStyle.Render("Ask anything about this paper."))
		lines = append(lines, "")
	}

	for _, m := range a.chatHistory {
		label := chatAssistantStyle.Render("paperdeck")
		if m.Role == "user" {
			label = chatUserStyle.Render("you")
		}
		lines = append(lines, "  "+label)
		for _, l := range strings.Split(wrapText(m.Content, contentWidth), "\n") {
			lines = append(lines, "  "+cardBodyStyle.Render(l))
		}
		lines = append(lines, "")
	}

	// Keep the tail of the conversation and the input visible
	inputLine := "  " + a.chatInput.View()
	maxLines := a.height - 3
	if maxLines < 3 {
		maxLines = 3
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	return strings.Join(lines, "\n") + "\n" + inputLine
}
