package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"webcrawler-mcp/pkg/config"
	"webcrawler-mcp/pkg/models"
	"webcrawler-mcp/pkg/parse"
	"webcrawler-mcp/pkg/utils"
)

// PageFetcher is the single-URL retrieval port: fetch a URL, extract its
// content as markdown, and report the internal outbound links discovered on
// the page. All failures are absorbed into the returned PageResult; the
// traversal layer never sees a Go error from a page fetch.
type PageFetcher struct {
	fetcher     *Fetcher
	robots      *RobotsGate // nil disables robots.txt checks
	userAgent   string
	maxPageSize int64
	log         *logrus.Logger
}

// NewPageFetcher creates a PageFetcher. robots may be nil when robots.txt
// enforcement is disabled in config.
func NewPageFetcher(fetcher *Fetcher, robots *RobotsGate, cfg *config.AppConfig, log *logrus.Logger) *PageFetcher {
	return &PageFetcher{
		fetcher:     fetcher,
		robots:      robots,
		userAgent:   cfg.DefaultUserAgent,
		maxPageSize: cfg.MaxPageSizeBytes,
		log:         log,
	}
}

// FetchPage retrieves a single URL. The result's URL is the final URL after
// redirects; Content is markdown for HTML responses and the raw body for
// plaintext responses (which carry no links).
func (pf *PageFetcher) FetchPage(ctx context.Context, rawURL string) models.PageResult {
	pageLog := pf.log.WithField("url", rawURL)

	target, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return failedResult(rawURL, fmt.Errorf("%w: URL %q: %w", utils.ErrParsing, rawURL, err))
	}

	if pf.robots != nil && !pf.robots.Allowed(ctx, target) {
		pageLog.Debug("Skipping fetch, disallowed by robots.txt")
		return failedResult(rawURL, utils.ErrRobotsDisallowed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return failedResult(rawURL, fmt.Errorf("%w: %w", utils.ErrRequestCreation, err))
	}
	req.Header.Set("User-Agent", pf.userAgent)

	resp, err := pf.fetcher.Do(ctx, req)
	if err != nil {
		drainAndClose(resp)
		pageLog.Debugf("Fetch failed (%s): %v", utils.CategorizeError(err), err)
		return failedResult(rawURL, err)
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL

	body, err := io.ReadAll(io.LimitReader(resp.Body, pf.maxPageSize))
	if err != nil {
		return failedResult(finalURL.String(), fmt.Errorf("%w: %w", utils.ErrResponseBodyRead, err))
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "html") {
		// Plaintext listings and other non-HTML payloads are returned as-is
		return models.PageResult{
			URL:     finalURL.String(),
			Content: strings.TrimSpace(string(body)),
			Success: true,
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return failedResult(finalURL.String(), fmt.Errorf("%w: HTML: %w", utils.ErrParsing, err))
	}

	content, err := extractMarkdown(doc)
	if err != nil {
		return failedResult(finalURL.String(), err)
	}

	links := extractInternalLinks(doc, finalURL)
	pageLog.WithFields(logrus.Fields{
		"final_url":      finalURL.String(),
		"content_length": len(content),
		"internal_links": len(links),
	}).Debug("Fetched page")

	return models.PageResult{
		URL:           finalURL.String(),
		Content:       content,
		Success:       true,
		InternalLinks: links,
	}
}

// FetchRaw retrieves a URL without any HTML processing; used for sitemap
// documents where the caller parses the body itself
func (pf *PageFetcher) FetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrRequestCreation, err)
	}
	req.Header.Set("User-Agent", pf.userAgent)

	resp, err := pf.fetcher.Do(ctx, req)
	if err != nil {
		drainAndClose(resp)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, pf.maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrResponseBodyRead, err)
	}
	return body, nil
}

// extractMarkdown converts the document body to markdown
func extractMarkdown(doc *goquery.Document) (string, error) {
	selection := doc.Find("body")
	if selection.Length() == 0 {
		selection = doc.Selection
	}

	contentHTML, err := selection.First().Html()
	if err != nil {
		return "", fmt.Errorf("%w: HTML: %w", utils.ErrParsing, err)
	}

	converter := md.NewConverter("", true, nil)
	content, err := converter.ConvertString(contentHTML)
	if err != nil {
		return "", fmt.Errorf("%w: %w", utils.ErrMarkdownConversion, err)
	}
	return strings.TrimSpace(content), nil
}

// extractInternalLinks collects absolute, deduplicated http(s) links whose
// host matches the fetched page's host, in document order. Dedup uses the
// normalized form so same-page fragment anchors collapse to one entry.
func extractInternalLinks(doc *goquery.Document, finalURL *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, element *goquery.Selection) {
		href, exists := element.Attr("href")
		if !exists || href == "" {
			return
		}

		linkURL, err := finalURL.Parse(href)
		if err != nil {
			return
		}
		if linkURL.Scheme != "http" && linkURL.Scheme != "https" {
			return
		}
		if linkURL.Hostname() != finalURL.Hostname() {
			return
		}

		absolute := linkURL.String()
		normalized := parse.Normalize(absolute)
		if normalized == "" {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		links = append(links, absolute)
	})

	return links
}

func failedResult(urlStr string, err error) models.PageResult {
	return models.PageResult{URL: urlStr, Success: false, Error: err.Error()}
}
