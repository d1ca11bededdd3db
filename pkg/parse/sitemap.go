package parse

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"webcrawler-mcp/pkg/utils"
)

// ExtractSitemapLocs pulls the text of every <loc> element out of a sitemap
// document, regardless of namespace. Works for both <urlset> and
// <sitemapindex> documents; nested sitemap indexes are not fetched or
// expanded, only this document's own <loc> entries are returned.
// Malformed XML yields ErrParsing; callers treat that as "no URLs found".
func ExtractSitemapLocs(data []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	// Sitemaps in the wild occasionally declare non-UTF-8 encodings; accept
	// them as-is rather than failing the whole document
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var urls []string
	inLoc := false
	var locText strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: sitemap XML: %w", utils.ErrParsing, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "loc" {
				inLoc = true
				locText.Reset()
			}
		case xml.CharData:
			if inLoc {
				locText.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "loc" {
				inLoc = false
				if loc := strings.TrimSpace(locText.String()); loc != "" {
					urls = append(urls, loc)
				}
			}
		}
	}

	return urls, nil
}
