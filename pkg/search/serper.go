package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"webcrawler-mcp/pkg/config"
	"webcrawler-mcp/pkg/models"
	"webcrawler-mcp/pkg/utils"
)

// SerperClient queries the Serper web search API. Pure delegation to the
// external service; no crawl logic lives here.
type SerperClient struct {
	client   *http.Client
	endpoint string
	apiKey   string
	log      *logrus.Entry
}

// NewSerperClient creates a SerperClient over the shared HTTP client
func NewSerperClient(client *http.Client, cfg config.SearchConfig, log *logrus.Logger) *SerperClient {
	return &SerperClient{
		client:   client,
		endpoint: cfg.SerperEndpoint,
		apiKey:   cfg.SerperAPIKey,
		log:      log.WithField("component", "serper"),
	}
}

// serperResponse maps the subset of the Serper payload we consume
type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search runs a web search and returns up to maxResults organic hits
func (s *SerperClient) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: SERPER_API_KEY", utils.ErrMissingAPIKey)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"q":   query,
		"num": maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrRequestCreation, err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrResponseBodyRead, err)
	}

	var parsed serperResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: JSON: %w", utils.ErrParsing, err)
	}

	results := make([]models.SearchResult, 0, maxResults)
	for _, hit := range parsed.Organic {
		if len(results) >= maxResults {
			break
		}
		results = append(results, models.SearchResult{
			Title:   hit.Title,
			URL:     hit.Link,
			Snippet: hit.Snippet,
		})
	}

	s.log.WithFields(logrus.Fields{"query": query, "results": len(results)}).Debug("Web search complete")
	return results, nil
}
