package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"webcrawler-mcp/pkg/crawler"
	"webcrawler-mcp/pkg/models"
)

// handleCrawlSinglePage handles the crawl_single_page tool
func (s *Server) handleCrawlSinglePage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	urlStr := request.GetString("url", "")
	if urlStr == "" {
		return mcp.NewToolResultError("url parameter is required"), nil
	}

	toolLog := s.toolLog("crawl_single_page").WithField("url", urlStr)
	toolLog.Info("Crawling single page")

	result := s.crawler.FetchOne(ctx, urlStr)
	if !result.Success || result.Content == "" {
		errMsg := result.Error
		if errMsg == "" {
			errMsg = "No content found"
		}
		toolLog.Warnf("Single page crawl failed: %s", errMsg)
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"success": false,
			"url":     urlStr,
			"error":   errMsg,
		})), nil
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"url":     result.URL,
		"content": result.Content,
	})), nil
}

// handleDeepCrawl handles the deep_crawl tool: classify the entry URL, run
// the matching retrieval strategy, and aggregate the outcome
func (s *Server) handleDeepCrawl(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	urlStr := request.GetString("url", "")
	if urlStr == "" {
		return mcp.NewToolResultError("url parameter is required"), nil
	}

	maxDepth := request.GetInt("max_depth", s.cfg.AppConfig.Crawl.DefaultMaxDepth)
	if maxDepth < 0 {
		return mcp.NewToolResultError("max_depth must be >= 0"), nil
	}
	maxConcurrent := request.GetInt("max_concurrency", s.cfg.AppConfig.Crawl.DefaultMaxConcurrent)
	if maxConcurrent < 1 {
		return mcp.NewToolResultError("max_concurrency must be >= 1"), nil
	}

	crawlType := s.classifier.Classify(urlStr)
	toolLog := s.toolLog("deep_crawl").WithFields(logrus.Fields{
		"url":        urlStr,
		"crawl_type": crawlType,
		"max_depth":  maxDepth,
	})
	toolLog.Info("Starting deep crawl")

	var results []models.PageResult
	switch crawlType {
	case models.CrawlTypeTextFile:
		results = s.crawler.CrawlSingle(ctx, urlStr)
	case models.CrawlTypeSitemap:
		results = s.crawler.CrawlSitemap(ctx, urlStr, maxConcurrent)
	default:
		results = s.crawler.CrawlRecursive(ctx, []string{urlStr}, maxDepth, maxConcurrent)
	}

	outcome := crawler.NewOutcome(crawlType, urlStr, results)
	toolLog.WithFields(logrus.Fields{
		"success":       outcome.Success,
		"pages_crawled": outcome.PagesCrawled,
	}).Info("Deep crawl finished")

	return mcp.NewToolResultText(formatJSON(outcome)), nil
}

// handleWebSearch handles the web_search tool
func (s *Server) handleWebSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	maxResults := request.GetInt("max_results", s.cfg.AppConfig.Search.DefaultMaxResults)
	if maxResults < 1 {
		maxResults = s.cfg.AppConfig.Search.DefaultMaxResults
	}

	toolLog := s.toolLog("web_search").WithField("query", query)
	toolLog.Info("Running web search")

	results, err := s.serper.Search(ctx, query, maxResults)
	if err != nil {
		toolLog.Warnf("Web search failed: %v", err)
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})), nil
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":   query,
		"results": results,
	})), nil
}

// handleWikipediaSearch handles the wikipedia_search tool
func (s *Server) handleWikipediaSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	sentences := request.GetInt("sentences", s.cfg.AppConfig.Search.DefaultSentences)
	language := request.GetString("language", s.cfg.AppConfig.Search.WikipediaLanguage)

	toolLog := s.toolLog("wikipedia_search").WithField("query", query)
	toolLog.Info("Running Wikipedia lookup")

	title, summary, pageURL, err := s.wikipedia.Summary(ctx, query, sentences, language)
	if err != nil {
		toolLog.Warnf("Wikipedia lookup failed: %v", err)
		// Failure shape keeps summary/url present-but-null
		return mcp.NewToolResultText(formatJSON(models.WikipediaResult{
			Query: query,
			Error: err.Error(),
		})), nil
	}

	return mcp.NewToolResultText(formatJSON(models.WikipediaResult{
		Query:   query,
		Title:   title,
		Summary: &summary,
		URL:     &pageURL,
	})), nil
}

// toolLog returns a logger scoped to one tool invocation, with a unique
// call ID so concurrent calls can be told apart in the logs
func (s *Server) toolLog(tool string) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{
		"tool":    tool,
		"call_id": uuid.NewString(),
	})
}

// formatJSON formats data as an indented JSON string
func formatJSON(data interface{}) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(b)
}
