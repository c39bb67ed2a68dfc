// Package bibtex renders papers as BibTeX citations.
package bibtex

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/matheuskafuri/paperdeck/internal/arxiv"
)

var nonAlpha = regexp.MustCompile(`[^a-zA-Z]`)
var nonAlphaNum = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// CitationKey builds a key like Vaswani2017AttentionIsAll: first
// author's last name, year, first three title words.
func CitationKey(authors []string, title string, year int) string {
	lastName := "Unknown"
	if len(authors) > 0 {
		parts := strings.Fields(authors[0])
		if len(parts) > 0 {
			lastName = nonAlpha.ReplaceAllString(parts[len(parts)-1], "")
		}
	}
	if lastName == "" {
		lastName = "Unknown"
	}

	words := strings.Fields(nonAlphaNum.ReplaceAllString(title, ""))
	if len(words) > 3 {
		words = words[:3]
	}
	var titlePart strings.Builder
	for _, w := range words {
		titlePart.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}

	return fmt.Sprintf("%s%d%s", lastName, year, titlePart.String())
}

// Entry renders one paper as a BibTeX @article entry.
func Entry(p arxiv.Paper) string {
	year := p.Published.Year()
	if year == 0 {
		year = time.Now().Year()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@article{%s,\n", CitationKey(p.Authors, p.Title, year))
	fmt.Fprintf(&b, "  title = {%s},\n", escapeBraces(p.Title))
	fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(p.Authors, " and "))
	fmt.Fprintf(&b, "  year = {%d},\n", year)
	if !p.Published.IsZero() {
		fmt.Fprintf(&b, "  month = {%s},\n", strings.ToLower(p.Published.Format("January")))
	}
	fmt.Fprintf(&b, "  journal = {arXiv preprint arXiv:%s},\n", p.ID)
	fmt.Fprintf(&b, "  eprint = {%s},\n", p.ID)
	b.WriteString("  archivePrefix = {arXiv},\n")
	if len(p.Categories) > 0 {
		fmt.Fprintf(&b, "  primaryClass = {%s},\n", p.Categories[0])
	}
	fmt.Fprintf(&b, "  url = {%s}\n", p.ArxivURL)
	b.WriteString("}")
	return b.String()
}

// File renders a complete .bib file for the given papers.
func File(papers []arxiv.Paper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%% BibTeX export from paperdeck\n")
	fmt.Fprintf(&b, "%% Generated on %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%% Total papers: %d\n\n", len(papers))

	entries := make([]string, len(papers))
	for i, p := range papers {
		entries[i] = Entry(p)
	}
	b.WriteString(strings.Join(entries, "\n\n"))
	b.WriteString("\n")
	return b.String()
}

func escapeBraces(s string) string {
	s = strings.ReplaceAll(s, "{", `\{`)
	return strings.ReplaceAll(s, "}", `\}`)
}
