package deck

import (
	"context"
	"sync"

	"github.com/matheuskafuri/paperdeck/internal/arxiv"
)

// BatchSummarizer is the bulk API used for prefetch warm-up.
type BatchSummarizer interface {
	BatchSummarize(ctx context.Context, papers []arxiv.Paper, level int) (map[string]string, error)
}

// Prefetcher warms the cache with level-1 summaries for the first few
// queue papers in one batch call. It runs exactly once per queue; a
// failure here is harmless because the per-paper fetch path covers any
// paper the batch missed.
type Prefetcher struct {
	batch BatchSummarizer
	count int
	once  sync.Once
}

func NewPrefetcher(batch BatchSummarizer, count int) *Prefetcher {
	if count <= 0 {
		count = 5
	}
	return &Prefetcher{batch: batch, count: count}
}

// Warm issues the batch fetch and seeds the cache with the results.
// Papers absent from the batch result are simply not yet available,
// not errors. Repeat calls are no-ops.
func (p *Prefetcher) Warm(ctx context.Context, cache *ContentCache, papers []arxiv.Paper) {
	p.once.Do(func() {
		n := p.count
		if n > len(papers) {
			n = len(papers)
		}
		if n == 0 {
			return
		}

		summaries, err := p.batch.BatchSummarize(ctx, papers[:n], 1)
		if err != nil {
			return
		}
		for id, text := range summaries {
			cache.Put(id, 1, text)
		}
	})
}
