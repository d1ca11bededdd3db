package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"webcrawler-mcp/pkg/config"
	"webcrawler-mcp/pkg/mcp"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML config file (optional, defaults apply)")
	envFile := flag.String("env", "", "Path to .env file to load (optional)")
	transport := flag.String("transport", "stdio", "Transport type (stdio, sse)")
	port := flag.Int("port", 8080, "HTTP port (for sse transport)")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: webcrawler-mcp [options]

Start an MCP (Model Context Protocol) server exposing web crawl and search tools.

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Start with stdio transport (for MCP clients)
  webcrawler-mcp -env .env

  # Start with SSE transport on port 8080
  webcrawler-mcp -config config.yaml -transport sse -port 8080

Available MCP Tools:
  crawl_single_page  Fetch one page as markdown
  deep_crawl         Crawl a webpage, sitemap, or .txt listing in depth
  web_search         Web search via the Serper API (needs SERPER_API_KEY)
  wikipedia_search   Wikipedia summary lookup
`)
	}
	flag.Parse()

	os.Exit(run(*configFile, *envFile, *transport, *port, *logLevel, os.Stderr))
}

// run is the testable implementation of the server startup
func run(configPath, envPath, transport string, port int, logLevel string, stderr io.Writer) int {
	// Setup logger. MCP stdio transport owns stdout, so logs go to stderr.
	log := logrus.New()
	log.SetOutput(stderr)
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid log level: %s\n", logLevel)
		return 1
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	// Load .env before config so env overrides see the values
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Fprintf(stderr, "Error loading env file: %v\n", err)
			return 1
		}
	} else {
		// Best effort: a .env in the working directory is picked up if present
		_ = godotenv.Load()
	}

	appCfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	warnings, err := appCfg.Validate()
	if err != nil {
		fmt.Fprintf(stderr, "Invalid config: %v\n", err)
		return 1
	}
	for _, w := range warnings {
		log.Warn(w)
	}

	srv, err := mcp.NewServer(&mcp.ServerConfig{
		AppConfig: appCfg,
		Transport: transport,
		Port:      port,
		Logger:    log,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error creating MCP server: %v\n", err)
		return 1
	}

	log.Infof("Starting MCP server (transport: %s)", transport)

	if err := srv.Run(); err != nil {
		fmt.Fprintf(stderr, "MCP server error: %v\n", err)
		return 1
	}

	return 0
}
