package crawler

import (
	"fmt"

	"webcrawler-mcp/pkg/models"
)

// previewLimit caps how many crawled URLs appear in the outcome preview
const previewLimit = 5

// noContentError is the well-defined non-fatal outcome for a crawl that
// produced zero pages, distinct from exceptional failure
const noContentError = "No content found"

// NewOutcome merges a crawl's per-page results into the single envelope
// returned to the tool caller. Success means at least one page was crawled.
func NewOutcome(crawlType models.CrawlType, url string, results []models.PageResult) models.CrawlOutcome {
	if len(results) == 0 {
		return models.CrawlOutcome{
			CrawlType: crawlType,
			URL:       url,
			Success:   false,
			Error:     noContentError,
		}
	}

	preview := make([]string, 0, previewLimit+1)
	for i, r := range results {
		if i == previewLimit {
			preview = append(preview, fmt.Sprintf("... and %d more", len(results)-previewLimit))
			break
		}
		preview = append(preview, r.URL)
	}

	return models.CrawlOutcome{
		CrawlType:          crawlType,
		URL:                url,
		Success:            true,
		PagesCrawled:       len(results),
		URLsCrawledPreview: preview,
		Results:            results,
	}
}
