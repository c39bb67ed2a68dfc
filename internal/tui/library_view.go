package tui

import (
	"fmt"
	"strings"

	"github.com/matheuskafuri/paperdeck/internal/store"
)

func renderLibraryItem(sp store.SavedPaper, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(sp.Paper.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(sp.Paper.Title, width-4))
	}

	meta := "  " + cardAuthorStyle.Render(formatAuthors(sp.Paper.Authors)) + " " +
		itemMetaStyle.Render(fmt.Sprintf("· saved %s at level %d", relativeTime(sp.SavedAt), sp.LevelAtSave))

	return title + "\n" + meta
}

func renderLibrary(papers []store.SavedPaper, cursor int, width, height int) string {
	listHeight := height - 3
	if listHeight < 3 {
		listHeight = 3
	}

	header := cardTitleStyle.Render("  Library") +
		itemMetaStyle.Render(fmt.Sprintf("  %d paper(s)", len(papers)))

	if len(papers) == 0 {
		empty := itemMetaStyle.Render("Nothing saved yet. Press space on a card to save it.")
		return header + "\n\n" + lipglossCenter(empty, width, listHeight)
	}

	// Each item is 2 lines + 1 blank line
	itemHeight := 3
	visible := listHeight / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(papers) {
		end = len(papers)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	b.WriteString(header + "\n\n")
	for i := start; i < end; i++ {
		b.WriteString(renderLibraryItem(papers[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}
