package parse

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"webcrawler-mcp/pkg/models"
)

// defaultSitemapPattern matches common sitemap filenames such as
// "sitemap.xml", "sitemap_index.xml", or "sitemap-posts.xml"
const defaultSitemapPattern = `(?i)sitemap[^/]*\.xml$`

// Classifier decides which retrieval strategy applies to an entry URL.
// Pure string inspection, no network access; every input maps to exactly
// one CrawlType.
type Classifier struct {
	sitemapPatterns []*regexp.Regexp
}

// NewClassifier builds a Classifier. extraSitemapPatterns are additional
// regexes (matched against the URL path) that mark a URL as a sitemap, on
// top of the built-in default.
func NewClassifier(extraSitemapPatterns []string) (*Classifier, error) {
	patterns := []*regexp.Regexp{regexp.MustCompile(defaultSitemapPattern)}
	for _, p := range extraSitemapPatterns {
		compiled, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid sitemap pattern %q: %w", p, err)
		}
		patterns = append(patterns, compiled)
	}
	return &Classifier{sitemapPatterns: patterns}, nil
}

// Classify maps a URL string to its CrawlType:
//   - text_file: path ends in ".txt" (plaintext listings like llms.txt)
//   - sitemap:   path matches a sitemap pattern, or the query string names one
//   - webpage:   everything else, including unparseable input
func (c *Classifier) Classify(rawURL string) models.CrawlType {
	path := rawURL
	query := ""
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
		query = u.RawQuery
	}

	if strings.HasSuffix(strings.ToLower(path), ".txt") {
		return models.CrawlTypeTextFile
	}

	for _, pattern := range c.sitemapPatterns {
		if pattern.MatchString(path) {
			return models.CrawlTypeSitemap
		}
	}
	if strings.Contains(strings.ToLower(query), "sitemap") {
		return models.CrawlTypeSitemap
	}

	return models.CrawlTypeWebpage
}
