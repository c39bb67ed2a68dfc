package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	gocache "github.com/patrickmn/go-cache"
)

const baseURL = "http://export.arxiv.org/api/query"

// Valid sort orders accepted by the arXiv API.
const (
	SortRelevance   = "relevance"
	SortLastUpdated = "lastUpdatedDate"
	SortSubmitted   = "submittedDate"
)

// Paper is one search result from arXiv. Immutable once parsed.
type Paper struct {
	ID         string
	Title      string
	Authors    []string
	Abstract   string
	Published  time.Time
	PDFURL     string
	ArxivURL   string
	Categories []string
}

// Client searches arXiv and fetches full paper text.
type Client struct {
	parser  *gofeed.Parser
	http    *http.Client
	results *gocache.Cache
}

func NewClient() *Client {
	return &Client{
		parser: gofeed.NewParser(),
		http:   &http.Client{Timeout: 30 * time.Second},
		// Repeated identical searches within a session hit the cache
		// instead of the arXiv API.
		results: gocache.New(30*time.Minute, 10*time.Minute),
	}
}

// Search queries arXiv and returns papers in the API's result order,
// which is the intended display order.
func (c *Client) Search(ctx context.Context, query string, maxResults int, sortBy string) ([]Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	cacheKey := fmt.Sprintf("%s:%d:%s", query, maxResults, sortBy)
	if hit, ok := c.results.Get(cacheKey); ok {
		return hit.([]Paper), nil
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("sortBy", sortBy)
	params.Set("sortOrder", "descending")

	feed, err := c.parser.ParseURLWithContext(baseURL+"?"+params.Encode(), ctx)
	if err != nil {
		return nil, fmt.Errorf("searching arXiv: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Items))
	for _, item := range feed.Items {
		p, ok := parseEntry(item)
		if !ok {
			continue
		}
		papers = append(papers, p)
	}

	c.results.Set(cacheKey, papers, gocache.DefaultExpiration)
	return papers, nil
}

// FullText fetches the HTML rendition of a paper and returns its text,
// for level 2-3 summaries. Returns "" with no error when arXiv has no
// HTML version; callers fall back to the abstract.
func (c *Client) FullText(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("empty paper id")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://arxiv.org/html/"+id, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching full text for %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching full text for %s: HTTP %d", id, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}
	return truncate(stripHTML(string(body)), 60000), nil
}

var versionSuffix = regexp.MustCompile(`v\d+$`)

// CleanID strips the URL prefix and version suffix from an arXiv
// identifier: "http://arxiv.org/abs/1706.03762v5" -> "1706.03762".
func CleanID(raw string) string {
	id := raw
	if i := strings.LastIndex(id, "/abs/"); i >= 0 {
		id = id[i+len("/abs/"):]
	} else if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return versionSuffix.ReplaceAllString(id, "")
}

func parseEntry(item *gofeed.Item) (Paper, bool) {
	if item.Link == "" && len(item.Links) == 0 {
		return Paper{}, false
	}

	arxivURL := item.Link
	if arxivURL == "" {
		arxivURL = item.Links[0]
	}
	id := CleanID(arxivURL)
	if id == "" {
		return Paper{}, false
	}

	var authors []string
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	pdfURL := ""
	for _, l := range item.Links {
		if strings.Contains(l, "/pdf/") {
			pdfURL = l
			break
		}
	}
	if pdfURL == "" {
		pdfURL = "https://arxiv.org/pdf/" + id + ".pdf"
	}

	published := time.Now()
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	return Paper{
		ID:         id,
		Title:      strings.Join(strings.Fields(item.Title), " "),
		Authors:    authors,
		Abstract:   strings.Join(strings.Fields(stripHTML(item.Description)), " "),
		Published:  published,
		PDFURL:     pdfURL,
		ArxivURL:   arxivURL,
		Categories: item.Categories,
	}, true
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
