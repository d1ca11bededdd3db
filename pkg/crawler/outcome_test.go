package crawler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcrawler-mcp/pkg/models"
)

func makeResults(n int) []models.PageResult {
	results := make([]models.PageResult, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, models.PageResult{
			URL:     fmt.Sprintf("http://site/page-%d", i),
			Content: "content",
			Success: true,
		})
	}
	return results
}

func TestNewOutcome_Empty(t *testing.T) {
	outcome := NewOutcome(models.CrawlTypeWebpage, "http://site/", nil)

	assert.False(t, outcome.Success)
	assert.Equal(t, "No content found", outcome.Error)
	assert.Equal(t, models.CrawlTypeWebpage, outcome.CrawlType)
	assert.Equal(t, "http://site/", outcome.URL)
	assert.Zero(t, outcome.PagesCrawled)
	assert.Empty(t, outcome.URLsCrawledPreview)
}

func TestNewOutcome_PreviewTruncation(t *testing.T) {
	t.Run("seven results: five entries plus marker", func(t *testing.T) {
		outcome := NewOutcome(models.CrawlTypeSitemap, "http://site/sitemap.xml", makeResults(7))

		assert.True(t, outcome.Success)
		assert.Equal(t, 7, outcome.PagesCrawled)
		require.Len(t, outcome.URLsCrawledPreview, 6)
		assert.Equal(t, "http://site/page-0", outcome.URLsCrawledPreview[0])
		assert.Equal(t, "http://site/page-4", outcome.URLsCrawledPreview[4])
		assert.Equal(t, "... and 2 more", outcome.URLsCrawledPreview[5])
	})

	t.Run("three results: three entries, no marker", func(t *testing.T) {
		outcome := NewOutcome(models.CrawlTypeWebpage, "http://site/", makeResults(3))

		assert.Equal(t, 3, outcome.PagesCrawled)
		require.Len(t, outcome.URLsCrawledPreview, 3)
		for _, entry := range outcome.URLsCrawledPreview {
			assert.NotContains(t, entry, "more")
		}
	})

	t.Run("exactly five results: no marker", func(t *testing.T) {
		outcome := NewOutcome(models.CrawlTypeWebpage, "http://site/", makeResults(5))
		require.Len(t, outcome.URLsCrawledPreview, 5)
	})

	t.Run("six results: marker counts one", func(t *testing.T) {
		outcome := NewOutcome(models.CrawlTypeWebpage, "http://site/", makeResults(6))
		require.Len(t, outcome.URLsCrawledPreview, 6)
		assert.Equal(t, "... and 1 more", outcome.URLsCrawledPreview[5])
	})
}

func TestNewOutcome_PreservesResultOrder(t *testing.T) {
	results := makeResults(4)
	outcome := NewOutcome(models.CrawlTypeWebpage, "http://site/", results)

	require.Len(t, outcome.Results, 4)
	for i, r := range outcome.Results {
		assert.Equal(t, fmt.Sprintf("http://site/page-%d", i), r.URL)
	}
}
