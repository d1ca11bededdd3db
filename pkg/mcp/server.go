package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"webcrawler-mcp/pkg/config"
	"webcrawler-mcp/pkg/crawler"
	"webcrawler-mcp/pkg/dispatch"
	"webcrawler-mcp/pkg/fetch"
	"webcrawler-mcp/pkg/parse"
	"webcrawler-mcp/pkg/search"
)

const (
	serverName    = "webcrawler-mcp"
	serverVersion = "1.0.0"
)

// ServerConfig holds configuration for the MCP server
type ServerConfig struct {
	AppConfig *config.AppConfig
	Transport string // "stdio" or "sse"
	Port      int
	Logger    *logrus.Logger
}

// Server wraps the MCP server with the crawl and search collaborators.
// All collaborators are constructed once here and shared across tool calls;
// per-call state (visited sets, result accumulators) lives inside each
// crawl invocation.
type Server struct {
	mcpServer  *server.MCPServer
	cfg        *ServerConfig
	log        *logrus.Entry
	classifier *parse.Classifier
	crawler    *crawler.Crawler
	serper     *search.SerperClient
	wikipedia  *search.WikipediaClient
}

// NewServer creates a new MCP server instance and wires the collaborators
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("AppConfig is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	log := cfg.Logger

	classifier, err := parse.NewClassifier(cfg.AppConfig.SitemapPatterns)
	if err != nil {
		return nil, fmt.Errorf("building URL classifier: %w", err)
	}

	httpClient := fetch.NewClient(cfg.AppConfig.HTTPClientSettings, log)
	fetcher := fetch.NewFetcher(httpClient, cfg.AppConfig, log)

	var robots *fetch.RobotsGate
	if cfg.AppConfig.RespectRobotsTxt {
		robots = fetch.NewRobotsGate(fetcher, cfg.AppConfig.DefaultUserAgent, log)
	}
	pageFetcher := fetch.NewPageFetcher(fetcher, robots, cfg.AppConfig, log)

	dispatcher := dispatch.NewMemoryAdaptiveDispatcher(cfg.AppConfig.Crawl, log)

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer:  mcpServer,
		cfg:        cfg,
		log:        log.WithField("component", "mcp"),
		classifier: classifier,
		crawler:    crawler.New(pageFetcher, dispatcher, log),
		serper:     search.NewSerperClient(httpClient, cfg.AppConfig.Search, log),
		wikipedia:  search.NewWikipediaClient(httpClient, cfg.AppConfig.DefaultUserAgent, log),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	crawlSinglePageTool := mcp.NewTool("crawl_single_page",
		mcp.WithDescription("Fetch a single web page and return its content as markdown"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to fetch"),
		),
	)
	s.mcpServer.AddTool(crawlSinglePageTool, s.handleCrawlSinglePage)

	deepCrawlTool := mcp.NewTool("deep_crawl",
		mcp.WithDescription("Crawl a URL in depth. Sitemap URLs are expanded to their listed pages, "+
			"plaintext listings are fetched directly, and webpages are crawled recursively "+
			"through internal links up to max_depth levels."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The entry URL (webpage, sitemap XML, or .txt listing)"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Maximum link-following depth for webpage crawls (default: 3)"),
		),
		mcp.WithNumber("max_concurrency",
			mcp.Description("Maximum number of concurrent fetches (default: 10)"),
		),
	)
	s.mcpServer.AddTool(deepCrawlTool, s.handleDeepCrawl)

	webSearchTool := mcp.NewTool("web_search",
		mcp.WithDescription("Search the web and return titles, URLs, and snippets"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default: 5)"),
		),
	)
	s.mcpServer.AddTool(webSearchTool, s.handleWebSearch)

	wikipediaSearchTool := mcp.NewTool("wikipedia_search",
		mcp.WithDescription("Look up a topic on Wikipedia and return a short summary"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The topic to look up"),
		),
		mcp.WithNumber("sentences",
			mcp.Description("Number of summary sentences to return (default: 3)"),
		),
		mcp.WithString("language",
			mcp.Description("Wikipedia language edition (default: \"en\")"),
		),
	)
	s.mcpServer.AddTool(wikipediaSearchTool, s.handleWikipediaSearch)

	s.log.Infof("Registered %d MCP tools", 4)
}

// Run starts the MCP server with the configured transport
func (s *Server) Run() error {
	switch s.cfg.Transport {
	case "stdio":
		s.log.Info("Starting MCP server with stdio transport")
		return server.ServeStdio(s.mcpServer)
	case "sse":
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		s.log.Infof("Starting MCP server with SSE transport on %s", addr)
		sseServer := server.NewSSEServer(s.mcpServer)
		return sseServer.Start(addr)
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", s.cfg.Transport)
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down MCP server...")
	return nil
}
