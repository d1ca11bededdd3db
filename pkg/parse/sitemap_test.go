package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcrawler-mcp/pkg/utils"
)

func TestExtractSitemapLocs_URLSet(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc><lastmod>2024-01-01</lastmod></url>
  <url><loc>https://example.com/about</loc></url>
  <url><loc>
    https://example.com/docs
  </loc></url>
</urlset>`)

	urls, err := ExtractSitemapLocs(data)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/",
		"https://example.com/about",
		"https://example.com/docs",
	}, urls)
}

func TestExtractSitemapLocs_SitemapIndex(t *testing.T) {
	// One level only: index entries come back as plain URLs, not expanded
	data := []byte(`<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/sitemap-1.xml</loc></sitemap>
  <sitemap><loc>https://example.com/sitemap-2.xml</loc></sitemap>
</sitemapindex>`)

	urls, err := ExtractSitemapLocs(data)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/sitemap-1.xml",
		"https://example.com/sitemap-2.xml",
	}, urls)
}

func TestExtractSitemapLocs_NamespacePrefix(t *testing.T) {
	data := []byte(`<sm:urlset xmlns:sm="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sm:url><sm:loc>https://example.com/page</sm:loc></sm:url>
</sm:urlset>`)

	urls, err := ExtractSitemapLocs(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/page"}, urls)
}

func TestExtractSitemapLocs_Malformed(t *testing.T) {
	urls, err := ExtractSitemapLocs([]byte(`<urlset><url><loc>https://x/`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrParsing))
	assert.Nil(t, urls)
}

func TestExtractSitemapLocs_NotXMLAtAll(t *testing.T) {
	urls, err := ExtractSitemapLocs([]byte(`<html><body>404 Not Found</body></html>`))
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestExtractSitemapLocs_Empty(t *testing.T) {
	urls, err := ExtractSitemapLocs([]byte(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`))
	require.NoError(t, err)
	assert.Empty(t, urls)
}
