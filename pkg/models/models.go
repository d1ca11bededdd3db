package models

// CrawlType identifies which retrieval strategy applies to an entry URL
type CrawlType string

const (
	CrawlTypeTextFile CrawlType = "text_file" // plaintext listing (e.g. llms.txt)
	CrawlTypeSitemap  CrawlType = "sitemap"   // sitemap XML feed
	CrawlTypeWebpage  CrawlType = "webpage"   // general webpage, default
)

// PageResult holds the outcome of fetching a single URL
// URL is the final URL after redirects; Content is the extracted markdown
type PageResult struct {
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// InternalLinks are absolute link targets on the same host as the fetched
	// page, candidates for frontier expansion. Not serialized in tool output.
	InternalLinks []string `json:"-"`
}

// CrawlOutcome is the envelope returned for one deep_crawl tool call
// Constructed once per call by the aggregator and immutable afterwards
type CrawlOutcome struct {
	CrawlType          CrawlType    `json:"crawl_type"`
	Success            bool         `json:"success"`
	URL                string       `json:"url"`
	PagesCrawled       int          `json:"pages_crawled"`
	URLsCrawledPreview []string     `json:"urls_crawled_preview,omitempty"`
	Results            []PageResult `json:"results,omitempty"`
	Error              string       `json:"error,omitempty"`
}

// SearchResult is a single web search hit
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WikipediaResult holds a Wikipedia summary lookup
// Summary and URL are pointers so a failed lookup serializes them as null
type WikipediaResult struct {
	Query   string  `json:"query"`
	Title   string  `json:"title,omitempty"`
	Summary *string `json:"summary"`
	URL     *string `json:"url"`
	Error   string  `json:"error,omitempty"`
}
