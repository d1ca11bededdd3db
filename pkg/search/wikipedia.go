package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"webcrawler-mcp/pkg/utils"
)

// maxExtractSentences is the MediaWiki API's exsentences ceiling
const maxExtractSentences = 10

// WikipediaClient looks up article summaries through the MediaWiki API:
// a title search followed by a plaintext extract limited to N sentences.
type WikipediaClient struct {
	client    *http.Client
	userAgent string
	apiBase   func(language string) string // overridable for tests
	log       *logrus.Entry
}

// NewWikipediaClient creates a WikipediaClient over the shared HTTP client
func NewWikipediaClient(client *http.Client, userAgent string, log *logrus.Logger) *WikipediaClient {
	return &WikipediaClient{
		client:    client,
		userAgent: userAgent,
		apiBase: func(language string) string {
			return fmt.Sprintf("https://%s.wikipedia.org/w/api.php", language)
		},
		log: log.WithField("component", "wikipedia"),
	}
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
			FullURL string `json:"fullurl"`
		} `json:"pages"`
	} `json:"query"`
}

// Summary resolves the best-matching article for query in the given language
// edition and returns its title, a plaintext summary of up to `sentences`
// sentences, and the canonical article URL.
func (w *WikipediaClient) Summary(ctx context.Context, query string, sentences int, language string) (title, summary, pageURL string, err error) {
	if language == "" {
		language = "en"
	}
	if sentences < 1 {
		sentences = 1
	}
	if sentences > maxExtractSentences {
		sentences = maxExtractSentences
	}

	apiBase := w.apiBase(language)

	title, err = w.searchTitle(ctx, apiBase, query)
	if err != nil {
		return "", "", "", err
	}
	if title == "" {
		return "", "", "", fmt.Errorf("no Wikipedia article found for %q", query)
	}

	summary, pageURL, err = w.fetchExtract(ctx, apiBase, title, sentences)
	if err != nil {
		return "", "", "", err
	}

	w.log.WithFields(logrus.Fields{"query": query, "title": title}).Debug("Wikipedia lookup complete")
	return title, summary, pageURL, nil
}

// searchTitle returns the top search hit's article title, or "" if none
func (w *WikipediaClient) searchTitle(ctx context.Context, apiBase, query string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "1")
	params.Set("format", "json")

	var parsed wikiSearchResponse
	if err := w.getJSON(ctx, apiBase+"?"+params.Encode(), &parsed); err != nil {
		return "", err
	}

	if len(parsed.Query.Search) == 0 {
		return "", nil
	}
	return parsed.Query.Search[0].Title, nil
}

// fetchExtract returns the plaintext intro extract and canonical URL for a title
func (w *WikipediaClient) fetchExtract(ctx context.Context, apiBase, title string, sentences int) (string, string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|info")
	params.Set("inprop", "url")
	params.Set("explaintext", "1")
	params.Set("exsentences", fmt.Sprintf("%d", sentences))
	params.Set("titles", title)
	params.Set("redirects", "1")
	params.Set("format", "json")

	var parsed wikiExtractResponse
	if err := w.getJSON(ctx, apiBase+"?"+params.Encode(), &parsed); err != nil {
		return "", "", err
	}

	for _, page := range parsed.Query.Pages {
		if page.Extract != "" {
			return page.Extract, page.FullURL, nil
		}
	}
	return "", "", fmt.Errorf("no extract available for article %q", title)
}

func (w *WikipediaClient) getJSON(ctx context.Context, fullURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", utils.ErrRequestCreation, err)
	}
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia API returned status %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return fmt.Errorf("%w: %w", utils.ErrResponseBodyRead, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: JSON: %w", utils.ErrParsing, err)
	}
	return nil
}
