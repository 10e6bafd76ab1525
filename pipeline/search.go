package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"research-pilot/models"
	"research-pilot/providers"
)

// BuildQueries generates the bounded query set for one topic: the raw
// topic, the topic combined with each methodology term, and the topic
// combined with the application contexts of the detected domain (generic
// contexts when the domain has none).
func BuildQueries(topic, domain string) []string {
	queries := []string{topic}
	for _, term := range methodologyTerms {
		queries = append(queries, topic+" "+term)
	}
	contexts, ok := applicationContexts[domain]
	if !ok {
		contexts = genericContexts
	}
	for _, c := range contexts {
		queries = append(queries, topic+" "+c)
	}
	return queries
}

// searchAll fans the queries out over the providers with bounded
// concurrency and merges the results, deduplicating by exact title text.
// A failed query degrades to zero results for that query and is never
// propagated; the merge order follows the query order so the output is
// deterministic for deterministic providers.
func searchAll(ctx context.Context, log *zap.Logger, provs []providers.Provider, queries []string, concurrency int) []*models.Paper {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([][]*models.Paper, len(queries))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i, query := range queries {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, query string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			for _, p := range provs {
				papers, err := p.Search(ctx, query)
				if err != nil {
					log.Warn("Provider query failed, treating as empty",
						zap.String("provider", p.Name()),
						zap.String("query", query),
						zap.Error(err))
					continue
				}
				results[i] = append(results[i], papers...)
			}
		}(i, query)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var merged []*models.Paper
	for _, batch := range results {
		for _, paper := range batch {
			if paper.Title == "" || seen[paper.Title] {
				continue
			}
			seen[paper.Title] = true
			merged = append(merged, paper)
		}
	}
	return merged
}
