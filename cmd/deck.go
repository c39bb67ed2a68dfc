package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/matheuskafuri/paperdeck/internal/ai"
	"github.com/matheuskafuri/paperdeck/internal/arxiv"
	"github.com/matheuskafuri/paperdeck/internal/bibtex"
	"github.com/matheuskafuri/paperdeck/internal/config"
	"github.com/matheuskafuri/paperdeck/internal/deck"
	"github.com/matheuskafuri/paperdeck/internal/events"
	"github.com/matheuskafuri/paperdeck/internal/store"
	"github.com/matheuskafuri/paperdeck/internal/tui"
	"github.com/matheuskafuri/paperdeck/internal/update"
)

func runDeck(query string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	maxResults := cfg.MaxResults()
	if flagMaxResults > 0 {
		maxResults = flagMaxResults
	}
	sortBy := cfg.SortBy()
	if flagSortBy != "" {
		sortBy = flagSortBy
	}

	kv, err := store.OpenKV(config.LibraryPath())
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}
	defer kv.Close()

	// Version check runs while the search is in flight
	updCh := make(chan string, 1)
	go func() {
		if r := update.Check(context.Background(), version); r != nil {
			updCh <- r.LatestVersion
			return
		}
		updCh <- ""
	}()

	arxivClient := arxiv.NewClient()

	var summarizer deck.Summarizer
	var batch deck.BatchSummarizer
	var chat ai.Client
	if cfg.AIEnabled() {
		client, err := ai.New(cfg.AI, cfg.AIKey(), arxivClient)
		if err != nil {
			return fmt.Errorf("configuring AI provider: %w", err)
		}
		summarizer = client
		batch = client
		chat = client
	} else {
		fallback := abstractSummarizer{}
		summarizer = fallback
		batch = fallback
	}

	broker := events.NewBroker()
	library := store.NewLibrary(kv, broker)

	// Each search deals a fresh engine with its own cache; the old
	// queue is dropped wholesale.
	deal := func(ctx context.Context, q string) (*deck.Engine, error) {
		papers, err := arxivClient.Search(ctx, q, maxResults, sortBy)
		if err != nil {
			return nil, fmt.Errorf("searching arXiv: %w", err)
		}
		if len(papers) == 0 {
			return nil, fmt.Errorf("no papers found for %q, try a broader query", q)
		}
		cache := deck.NewContentCache(summarizer)
		prefetcher := deck.NewPrefetcher(batch, cfg.GetPrefetchCount())
		return deck.NewEngine(papers, cache, prefetcher, library, bibtex.Entry), nil
	}

	var engine *deck.Engine
	if query != "" {
		fmt.Printf("Searching arXiv for %q...\n", query)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		engine, err = deal(ctx, query)
		cancel()
		if err != nil {
			return err
		}
	}

	var updateVersion string
	select {
	case updateVersion = <-updCh:
	default:
	}

	return tui.Run(tui.RunOpts{
		Engine:        engine,
		Deal:          deal,
		Library:       library,
		Chat:          chat,
		Broker:        broker,
		Query:         query,
		StartAtHome:   !flagNoHome,
		UpdateVersion: updateVersion,
	})
}

// abstractSummarizer serves level 1 straight from the paper's abstract
// when no AI provider is configured. Deeper levels are unavailable.
type abstractSummarizer struct{}

func (abstractSummarizer) Summarize(ctx context.Context, abstract string, level int, paperID string) (string, error) {
	if level > 1 {
		return "", fmt.Errorf("level %d summaries need an AI provider; add one to %s", level, config.DefaultConfigPath())
	}
	return abstract, nil
}

func (abstractSummarizer) BatchSummarize(ctx context.Context, papers []arxiv.Paper, level int) (map[string]string, error) {
	out := make(map[string]string, len(papers))
	for _, p := range papers {
		if p.ID == "" {
			continue
		}
		out[p.ID] = p.Abstract
	}
	return out, nil
}
