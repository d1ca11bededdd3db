package crawler

import (
	"context"

	"github.com/sirupsen/logrus"

	"webcrawler-mcp/pkg/models"
	"webcrawler-mcp/pkg/parse"
	"webcrawler-mcp/pkg/utils"
)

// PageFetcher is the single-URL retrieval port the engine consumes
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) models.PageResult
	FetchRaw(ctx context.Context, url string) ([]byte, error)
}

// BatchDispatcher schedules a batch of fetches under the concurrency ceiling
// and memory admission policy
type BatchDispatcher interface {
	FetchMany(ctx context.Context, urls []string, maxConcurrent int, fetch func(ctx context.Context, url string) models.PageResult) []models.PageResult
}

// Crawler drives the retrieval strategies: single page, sitemap expansion,
// flat batch, and breadth-first recursive traversal. All mutable crawl state
// (visited set, results) is scoped to one method call, so concurrent tool
// calls never interfere.
type Crawler struct {
	fetcher    PageFetcher
	dispatcher BatchDispatcher
	log        *logrus.Entry
}

// New creates a Crawler over the given fetch port and dispatcher
func New(fetcher PageFetcher, dispatcher BatchDispatcher, log *logrus.Logger) *Crawler {
	return &Crawler{
		fetcher:    fetcher,
		dispatcher: dispatcher,
		log:        log.WithField("component", "crawler"),
	}
}

// FetchOne exposes the raw single-page fetch outcome, failure detail included
func (c *Crawler) FetchOne(ctx context.Context, rawURL string) models.PageResult {
	return c.fetcher.FetchPage(ctx, rawURL)
}

// CrawlSingle fetches one URL. Returns a single-element slice on success
// with non-empty content, an empty slice otherwise.
func (c *Crawler) CrawlSingle(ctx context.Context, rawURL string) []models.PageResult {
	result := c.FetchOne(ctx, rawURL)
	if result.Success && result.Content != "" {
		return []models.PageResult{result}
	}
	c.log.WithField("url", rawURL).Warnf("Failed to crawl page: %s", result.Error)
	return nil
}

// CrawlSitemap fetches a sitemap document, extracts its leaf URLs, and batch
// fetches them. Fetch or parse failure of the sitemap itself is recoverable:
// it is logged and yields an empty result set, never an error.
func (c *Crawler) CrawlSitemap(ctx context.Context, sitemapURL string, maxConcurrent int) []models.PageResult {
	smLog := c.log.WithField("sitemap_url", sitemapURL)

	body, err := c.fetcher.FetchRaw(ctx, sitemapURL)
	if err != nil {
		smLog.Warnf("Failed to fetch sitemap (%s): %v", utils.CategorizeError(err), err)
		return nil
	}

	urls, err := parse.ExtractSitemapLocs(body)
	if err != nil {
		smLog.Warnf("Failed to parse sitemap XML: %v", err)
		return nil
	}
	if len(urls) == 0 {
		smLog.Warn("Sitemap contained no URLs")
		return nil
	}

	smLog.Infof("Sitemap expanded to %d URLs", len(urls))
	return c.CrawlMany(ctx, urls, maxConcurrent)
}

// CrawlMany batch fetches a flat list of URLs with no link following. Failed
// fetches and empty pages are dropped; each URL's success is independent.
func (c *Crawler) CrawlMany(ctx context.Context, urls []string, maxConcurrent int) []models.PageResult {
	batch := c.dispatcher.FetchMany(ctx, urls, maxConcurrent, c.fetcher.FetchPage)

	results := make([]models.PageResult, 0, len(batch))
	for _, r := range batch {
		if r.Success && r.Content != "" {
			results = append(results, r)
		} else if !r.Success {
			c.log.WithField("url", r.URL).Debugf("Dropping failed fetch: %s", r.Error)
		}
	}
	return results
}

// CrawlRecursive expands seed URLs breadth-first up to maxDepth levels. Each
// level's frontier is the previous level's internal links minus everything
// already visited. URLs are marked visited when scheduled, before their
// fetches are issued, so sibling pages at the same level can never re-queue
// one another. Results are in discovery order across levels; within a level
// they follow batch request order.
func (c *Crawler) CrawlRecursive(ctx context.Context, seedURLs []string, maxDepth, maxConcurrent int) []models.PageResult {
	visited := make(map[string]struct{})
	currentLevel := newFrontier()
	for _, seed := range seedURLs {
		currentLevel.add(parse.Normalize(seed))
	}

	var results []models.PageResult

	for depth := 0; depth < maxDepth; depth++ {
		toFetch := currentLevel.unvisited(visited)
		if len(toFetch) == 0 {
			break
		}

		// Mark before fetching: bounds total fetch count even when pages at
		// this level link to each other
		for _, u := range toFetch {
			visited[u] = struct{}{}
		}

		levelLog := c.log.WithFields(logrus.Fields{"depth": depth, "level_size": len(toFetch)})
		levelLog.Info("Fetching frontier level")

		batch := c.dispatcher.FetchMany(ctx, toFetch, maxConcurrent, c.fetcher.FetchPage)

		nextLevel := newFrontier()
		for _, result := range batch {
			if !result.Success || result.Content == "" {
				if !result.Success {
					levelLog.WithField("url", result.URL).Debugf("Dropping failed fetch: %s", result.Error)
				}
				continue
			}
			results = append(results, result)

			for _, link := range result.InternalLinks {
				normalized := parse.Normalize(link)
				if _, seen := visited[normalized]; !seen {
					nextLevel.add(normalized)
				}
			}
		}

		levelLog.WithFields(logrus.Fields{
			"pages_kept":    len(results),
			"next_frontier": nextLevel.len(),
		}).Debug("Frontier level complete")

		currentLevel = nextLevel
	}

	return results
}

// frontier is an insertion-ordered set of normalized URLs for one BFS level
type frontier struct {
	order []string
	seen  map[string]struct{}
}

func newFrontier() *frontier {
	return &frontier{seen: make(map[string]struct{})}
}

func (f *frontier) add(normalizedURL string) {
	if normalizedURL == "" {
		return
	}
	if _, dup := f.seen[normalizedURL]; dup {
		return
	}
	f.seen[normalizedURL] = struct{}{}
	f.order = append(f.order, normalizedURL)
}

func (f *frontier) len() int { return len(f.order) }

// unvisited returns the level's URLs not yet in the visited set, in
// insertion order
func (f *frontier) unvisited(visited map[string]struct{}) []string {
	var out []string
	for _, u := range f.order {
		if _, done := visited[u]; !done {
			out = append(out, u)
		}
	}
	return out
}
