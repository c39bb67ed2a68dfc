package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/paperdeck/internal/arxiv"
	"github.com/matheuskafuri/paperdeck/internal/deck"
)

func cardInnerWidth(width int) int {
	w := width - 12
	if w < 30 {
		w = 30
	}
	return w
}

func renderCard(p arxiv.Paper, cur deck.Cursor, total int, body string, saved bool, anim *animState, width, height int) string {
	cardWidth := cardInnerWidth(width)

	var card []string

	// Authors · date line
	meta := formatAuthors(p.Authors) + " · " + p.Published.Format("Jan 2006")
	card = append(card, cardMetaStyle.Render(truncateStr(meta, cardWidth)))

	// Title
	title := cardTitleStyle.Width(cardWidth).Render(p.Title)
	card = append(card, strings.Split(title, "\n")...)

	// Categories
	if len(p.Categories) > 0 {
		card = append(card, cardMetaStyle.Render(strings.Join(p.Categories, " · ")))
	}

	card = append(card, "")
	card = append(card, strings.Split(body, "\n")...)

	cardBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(levelBorder(cur.Level)).
		Padding(0, 1).
		Width(cardWidth).
		Render(strings.Join(card, "\n"))

	// Counter and level badge above the card
	header := cardMetaStyle.Render(fmt.Sprintf("%d/%d", cur.Index+1, total)) +
		"  " + levelBadgeStyle.Render(levelLabel(cur.Level))
	if saved {
		header += "  " + savedBadgeStyle.Render("★ saved")
	}

	// Exit animation shifts the card toward the swipe direction
	margin := 2
	if anim != nil {
		offset := anim.frame * 4
		if anim.dir == deck.DirRight {
			margin += offset
		} else {
			margin -= offset
			if margin < 0 {
				margin = 0
			}
		}
	}
	indent := strings.Repeat(" ", margin)

	var lines []string
	lines = append(lines, "", indent+header)
	for _, l := range strings.Split(cardBox, "\n") {
		lines = append(lines, indent+l)
	}

	content := strings.Join(lines, "\n")
	contentLines := strings.Count(content, "\n") + 1
	topPad := (height - contentLines) / 3
	if topPad < 0 {
		topPad = 0
	}

	return strings.Repeat("\n", topPad) + content
}

func levelLabel(level int) string {
	switch level {
	case 1:
		return "Level 1 · Quick take"
	case 2:
		return "Level 2 · Methods"
	default:
		return "Level 3 · Deep dive"
	}
}

func formatAuthors(authors []string) string {
	if len(authors) == 0 {
		return "Unknown authors"
	}
	if len(authors) > 3 {
		return strings.Join(authors[:3], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
}

func renderExhausted(total, saved int, width, height int) string {
	title := cardTitleStyle.Render("Deck complete")
	stats := cardMetaStyle.Render(fmt.Sprintf("%d papers reviewed · %d in your library", total, saved))
	hint := cardMetaStyle.Render("Run another search to deal a new deck.")

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGold).
		Padding(1, 3).
		Render(title + "\n\n" + stats + "\n" + hint)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
